// Package container provides dependency injection for the wealthwise application.
// It centralizes the creation and wiring of all application dependencies,
// making them explicit and testable.
package container

import (
	"context"
	"fmt"

	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/advisor"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/categories"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/config"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/currency"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/importer"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/logging"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/merchant"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/models"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/repository"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/settings"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/store"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/webhook"
)

// Container holds all application dependencies and provides methods to access them.
//
// Container is immutable after creation - all fields are private and can only
// be accessed through getter methods.
type Container struct {
	logger     logging.Logger
	config     *config.Config
	backend    store.Backend
	normalizer currency.Normalizer
	categories *categories.Registry
	merchants  *merchant.Store
	repository *repository.Repository
	settings   *settings.Store
	notifier   *webhook.Notifier
	importer   *importer.Service
	advisor    *advisor.Advisor
	gemini     *advisor.GeminiGenerator
}

// NewContainer opens the configured backend and wires every component on top of it.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	// Create logger first as it's needed by other components
	logger := logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)
	logging.SetDefault(logger)

	backend, err := store.Open(ctx, cfg.StoreConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	c, err := NewContainerWithBackend(ctx, cfg, backend, logger)
	if err != nil {
		_ = backend.Close()
		return nil, err
	}
	return c, nil
}

// NewContainerWithBackend wires the components on an already open backend.
// The container takes ownership of backend.
func NewContainerWithBackend(ctx context.Context, cfg *config.Config, backend store.Backend, logger logging.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	logger = logging.OrDefault(logger)

	rate, err := cfg.ExchangeRate()
	if err != nil {
		return nil, err
	}
	normalizer := currency.NewNormalizer(rate)

	settingsStore, err := settings.Open(cfg.Settings.File, logger)
	if err != nil {
		return nil, err
	}

	registry := categories.NewRegistry(backend.Categories(), logger)
	merchants := merchant.NewStore(backend.MerchantMappings(), logger)
	repo := repository.New(backend.Transactions(), logger)

	notifier := webhook.NewNotifier(webhook.Config{
		Timeout:  cfg.WebhookTimeout(),
		Attempts: uint(cfg.Webhook.Attempts),
		Delay:    cfg.WebhookDelay(),
	}, logger)

	parser := importer.NewParser(normalizer, merchants, registry, logger)
	importService := importer.NewService(parser, repo, notifier, settingsStore, logger)

	// Create AI advisor (if enabled)
	var (
		gemini *advisor.GeminiGenerator
		adv    *advisor.Advisor
	)
	if cfg.AI.Enabled && cfg.AI.APIKey != "" {
		gemini, err = advisor.NewGeminiGenerator(ctx, cfg.AI.APIKey, cfg.AI.Model)
		if err != nil {
			return nil, err
		}
		adv = advisor.New(gemini, normalizer, cfg.AI.MaxTransactions, logger)
		logger.Info("AI advisor enabled")
	} else {
		logger.Debug("AI advisor disabled")
	}

	logger.Debug("Container initialized successfully",
		logging.F("driver", cfg.StoreConfig().Driver),
		logging.F("ai_enabled", adv != nil))

	return &Container{
		logger:     logger,
		config:     cfg,
		backend:    backend,
		normalizer: normalizer,
		categories: registry,
		merchants:  merchants,
		repository: repo,
		settings:   settingsStore,
		notifier:   notifier,
		importer:   importService,
		advisor:    adv,
		gemini:     gemini,
	}, nil
}

// Load populates the in-memory views from the backend. Categories are
// seeded from the configured file, or the built-in defaults, when the store
// holds none.
func (c *Container) Load(ctx context.Context) error {
	seed, err := categories.LoadSeed(c.config.Categories.File)
	if err != nil {
		return err
	}
	if err := c.categories.Load(ctx, seed); err != nil {
		return fmt.Errorf("failed to load categories: %w", err)
	}
	if err := c.merchants.Load(ctx); err != nil {
		return fmt.Errorf("failed to load merchant mappings: %w", err)
	}
	if err := c.repository.Load(ctx); err != nil {
		return fmt.Errorf("failed to load transactions: %w", err)
	}
	return nil
}

// ImportOptions returns the import options for one file. bank names the
// selected account; empty selects the configured default. Accounts missing
// from the configured list are treated as primary-currency accounts.
func (c *Container) ImportOptions(fileName, bank string) importer.Options {
	if bank == "" {
		bank = c.config.Import.DefaultBank
	}
	selected, ok := models.FindBank(c.config.Import.Banks, bank)
	if !ok {
		selected = models.Bank{Name: bank, Currency: c.normalizer.Primary}
	}
	return importer.Options{
		DefaultBank: selected,
		Banks:       c.config.Import.Banks,
		FileName:    fileName,
	}
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetNormalizer returns the currency normalizer.
func (c *Container) GetNormalizer() currency.Normalizer {
	return c.normalizer
}

// GetCategories returns the category registry.
func (c *Container) GetCategories() *categories.Registry {
	return c.categories
}

// GetMerchants returns the merchant mapping store.
func (c *Container) GetMerchants() *merchant.Store {
	return c.merchants
}

// GetRepository returns the transaction repository.
func (c *Container) GetRepository() *repository.Repository {
	return c.repository
}

// GetSettings returns the local key-value settings.
func (c *Container) GetSettings() *settings.Store {
	return c.settings
}

// GetNotifier returns the webhook notifier.
func (c *Container) GetNotifier() *webhook.Notifier {
	return c.notifier
}

// GetImporter returns the import service.
func (c *Container) GetImporter() *importer.Service {
	return c.importer
}

// GetAdvisor returns the AI advisor, or nil when AI is disabled.
func (c *Container) GetAdvisor() *advisor.Advisor {
	return c.advisor
}

// Close releases the backend and the AI client.
func (c *Container) Close() error {
	var firstErr error
	if c.gemini != nil {
		if err := c.gemini.Close(); err != nil {
			firstErr = err
		}
	}
	if err := c.backend.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	c.logger.Debug("Container closed")
	return firstErr
}
