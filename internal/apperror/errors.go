// Package apperror defines the typed errors surfaced by the tracker core and
// the conversion of any error into a user-facing message.
package apperror

import (
	"errors"
	"fmt"
	"strings"
)

// InvalidFormatError is a structural import failure: the CSV layout offers no
// usable columns. The whole import is aborted.
type InvalidFormatError struct {
	FileName       string
	ExpectedFormat string
	Headers        []string
	Msg            string
}

func (e *InvalidFormatError) Error() string {
	name := e.FileName
	if name == "" {
		name = "<upload>"
	}
	msg := fmt.Sprintf("invalid format in file '%s': %s", name, e.Msg)
	if e.ExpectedFormat != "" {
		msg += ". Expected: " + e.ExpectedFormat
	}
	if len(e.Headers) > 0 {
		msg += ". Found headers: " + strings.Join(e.Headers, ", ")
	}
	return msg
}

// PersistenceError reports that the external store rejected a mutation.
type PersistenceError struct {
	Operation string
	Entity    string
	ID        string
	Err       error
}

func (e *PersistenceError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("failed to %s %s %s: %v", e.Operation, e.Entity, e.ID, e.Err)
	}
	return fmt.Sprintf("failed to %s %s: %v", e.Operation, e.Entity, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// BatchError reports a failed or partially-applied bulk insert. A batch is
// treated as failed as a whole, even when some rows were acknowledged.
type BatchError struct {
	Requested    int
	Acknowledged int
	Err          error
}

func (e *BatchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("batch insert of %d rows failed (%d acknowledged): %v", e.Requested, e.Acknowledged, e.Err)
	}
	return fmt.Sprintf("batch insert of %d rows only partially applied (%d acknowledged)", e.Requested, e.Acknowledged)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

// Partial reports whether the store acknowledged some, but not all, rows.
func (e *BatchError) Partial() bool {
	return e.Acknowledged > 0 && e.Acknowledged < e.Requested
}

// WebhookError reports a failed webhook delivery. It never fails an import.
type WebhookError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *WebhookError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("webhook %s responded with status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("webhook %s delivery failed: %v", e.URL, e.Err)
}

func (e *WebhookError) Unwrap() error {
	return e.Err
}

// NotFoundError reports a lookup of an unknown entity.
type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.Key)
}

// ProtectedCategoryError reports an attempt to delete a sentinel category.
type ProtectedCategoryError struct {
	ID string
}

func (e *ProtectedCategoryError) Error() string {
	return fmt.Sprintf("category %q is reserved and cannot be deleted", e.ID)
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// UserMessage converts err into a sentence suitable for showing to the user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var (
		formatErr    *InvalidFormatError
		batchErr     *BatchError
		persistErr   *PersistenceError
		webhookErr   *WebhookError
		notFoundErr  *NotFoundError
		protectedErr *ProtectedCategoryError
	)

	switch {
	case errors.As(err, &formatErr):
		return "Could not import file: " + formatErr.Msg + ". Nothing was imported."
	case errors.As(err, &batchErr):
		return fmt.Sprintf("Import failed: the store rejected the batch of %d transactions. Nothing was kept locally; please retry.", batchErr.Requested)
	case errors.As(err, &persistErr):
		return fmt.Sprintf("Could not %s %s: %v. Your change was reverted.", persistErr.Operation, persistErr.Entity, persistErr.Err)
	case errors.As(err, &webhookErr):
		return "Webhook delivery failed: " + webhookErr.Error()
	case errors.As(err, &notFoundErr):
		return notFoundErr.Error()
	case errors.As(err, &protectedErr):
		return protectedErr.Error()
	default:
		return err.Error()
	}
}
