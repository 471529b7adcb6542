package importer

import (
	"context"
	"fmt"
	"time"

	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/logging"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/models"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/webhook"
)

// TransactionSink receives parsed drafts.
type TransactionSink interface {
	BulkAdd(ctx context.Context, drafts []models.Transaction) ([]models.Transaction, error)
}

// Notifier delivers the import payload to the webhook.
type Notifier interface {
	Send(ctx context.Context, url string, p webhook.Payload) error
}

// URLSource supplies the currently configured webhook URL.
type URLSource interface {
	WebhookURL() string
}

// Outcome summarizes a completed import.
type Outcome struct {
	Result   *Result
	Imported []models.Transaction
	// WebhookErr is set when the import succeeded but delivery failed.
	WebhookErr error
}

// Message is the user-facing summary of the import.
func (o *Outcome) Message() string {
	msg := fmt.Sprintf("Imported %d transactions (%d auto-categorized", len(o.Imported), o.Result.AutoCategorized)
	if o.Result.Skipped > 0 {
		msg += fmt.Sprintf(", %d rows skipped", o.Result.Skipped)
	}
	msg += ")"
	if o.WebhookErr != nil {
		msg += fmt.Sprintf(" but webhook failed: %v", o.WebhookErr)
	}
	return msg
}

// Service runs the full import: parse, store, notify.
type Service struct {
	parser   *Parser
	sink     TransactionSink
	notifier Notifier
	urls     URLSource
	logger   logging.Logger
	now      func() time.Time
}

// NewService wires an import service. notifier and urls may be nil to
// disable the webhook.
func NewService(parser *Parser, sink TransactionSink, notifier Notifier, urls URLSource, logger logging.Logger) *Service {
	return &Service{
		parser:   parser,
		sink:     sink,
		notifier: notifier,
		urls:     urls,
		logger:   logging.OrDefault(logger).WithField(logging.FieldComponent, "import"),
		now:      time.Now,
	}
}

// Preview parses data without storing anything.
func (s *Service) Preview(data []byte, opts Options) (*Result, error) {
	return s.parser.Parse(data, opts)
}

// Import parses data and stores the drafts as one batch. A structural or
// storage failure returns an error and leaves the repository unchanged. A
// webhook failure is reported in the outcome only.
func (s *Service) Import(ctx context.Context, data []byte, opts Options) (*Outcome, error) {
	start := s.now()
	log := s.logger.WithFields(
		logging.F(logging.FieldFile, opts.FileName),
		logging.F(logging.FieldBank, opts.DefaultBank.Name),
	)

	res, err := s.parser.Parse(data, opts)
	if err != nil {
		log.WithError(err).Error("Import aborted")
		return nil, err
	}

	imported, err := s.sink.BulkAdd(ctx, res.Drafts)
	if err != nil {
		log.WithError(err).Error("Import failed to store transactions")
		return nil, err
	}

	out := &Outcome{Result: res, Imported: imported}
	if len(imported) > 0 {
		out.WebhookErr = s.notify(ctx, imported, opts)
	}

	log.WithFields(
		logging.F(logging.FieldCount, len(imported)),
		logging.F(logging.FieldDuration, s.now().Sub(start).Milliseconds()),
	).Info("Import completed")
	return out, nil
}

func (s *Service) notify(ctx context.Context, txs []models.Transaction, opts Options) error {
	if s.notifier == nil || s.urls == nil {
		return nil
	}
	url := s.urls.WebhookURL()
	if url == "" {
		return nil
	}

	return s.notifier.Send(ctx, url, webhook.Payload{
		Transactions: txs,
		Metadata: webhook.Metadata{
			BankName:   opts.DefaultBank.Name,
			FileName:   opts.FileName,
			Count:      len(txs),
			ImportedAt: s.now().UTC(),
		},
	})
}
