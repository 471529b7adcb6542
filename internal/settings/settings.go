// Package settings persists small local preferences, such as the webhook
// URL, in a YAML key-value file.
package settings

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/fileutils"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/logging"
)

// KeyWebhookURL is the fixed key under which the webhook URL is stored.
const KeyWebhookURL = "webhook_url"

// Store is a key-value file. Every write rewrites the whole file.
type Store struct {
	path   string
	logger logging.Logger
	mu     sync.RWMutex
	values map[string]string
}

// Open loads the file at path. A missing file yields an empty store; it is
// created on the first write.
func Open(path string, logger logging.Logger) (*Store, error) {
	s := &Store{
		path:   path,
		logger: logging.OrDefault(logger).WithField(logging.FieldComponent, "settings"),
		values: make(map[string]string),
	}
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path) // #nosec G304 -- path comes from configuration
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("error reading settings file: %w", err)
	}
	if err := yaml.Unmarshal(data, &s.values); err != nil {
		return nil, fmt.Errorf("error parsing settings file: %w", err)
	}
	if s.values == nil {
		s.values = make(map[string]string)
	}
	return s, nil
}

// Get returns the value for key, or "" when unset.
func (s *Store) Get(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[key]
}

// Set stores value under key. An empty value clears the key.
func (s *Store) Set(key, value string) error {
	value = strings.TrimSpace(value)

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.values[key]
	if value == "" {
		delete(s.values, key)
	} else {
		s.values[key] = value
	}

	if err := s.saveLocked(); err != nil {
		if had {
			s.values[key] = prev
		} else {
			delete(s.values, key)
		}
		return err
	}

	s.logger.WithField("key", key).Debug("Saved setting")
	return nil
}

// Keys returns the stored keys in sorted order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// WebhookURL returns the configured webhook URL.
func (s *Store) WebhookURL() string {
	return s.Get(KeyWebhookURL)
}

// SetWebhookURL stores the webhook URL; an empty url clears it.
func (s *Store) SetWebhookURL(url string) error {
	return s.Set(KeyWebhookURL, url)
}

func (s *Store) saveLocked() error {
	if s.path == "" {
		return nil
	}
	if err := fileutils.EnsureParentDir(s.path); err != nil {
		return fmt.Errorf("error creating settings directory: %w", err)
	}
	data, err := yaml.Marshal(s.values)
	if err != nil {
		return fmt.Errorf("error encoding settings: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("error writing settings file: %w", err)
	}
	return nil
}
