// ABOUTME: Selector settings store backed by the shared key-value storage
// ABOUTME: Stored overrides are merged onto the default selectors on every read

package settings

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/anhbatoichoi/content-capture-universe/core/domain"
	coreerrors "github.com/anhbatoichoi/content-capture-universe/core/errors"
	"github.com/anhbatoichoi/content-capture-universe/core/interfaces"
)

// StorageKey is the storage key holding the selector overrides
const StorageKey = "contentSelectors"

// Store reads and writes selector settings
type Store struct {
	storage interfaces.Storage
	logger  interfaces.Logger
	mu      sync.Mutex
}

// NewStore creates a settings store. storage may be nil, in which case
// only the defaults are ever returned.
func NewStore(storage interfaces.Storage, logger interfaces.Logger) *Store {
	if logger == nil {
		logger = interfaces.NopLogger{}
	}
	return &Store{storage: storage, logger: logger}
}

// Get returns the defaults with any stored overrides applied
func (s *Store) Get(ctx context.Context) (domain.SelectorSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(ctx)
}

// Update merges the non-empty fields of overrides into the stored settings
// and returns the effective result
func (s *Store) Update(ctx context.Context, overrides domain.SelectorSettings) (domain.SelectorSettings, error) {
	if s.storage == nil {
		return domain.SelectorSettings{}, errors.New("settings storage is not configured")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.getLocked(ctx)
	if err != nil {
		return domain.SelectorSettings{}, err
	}
	updated := current.Merge(trimmed(overrides))

	data, err := json.Marshal(updated)
	if err != nil {
		return domain.SelectorSettings{}, coreerrors.WrapError(err, "failed to encode selector settings")
	}
	if err := s.storage.Set(ctx, StorageKey, data); err != nil {
		return domain.SelectorSettings{}, coreerrors.WrapError(err, "failed to save selector settings")
	}

	s.logger.Info("Selector settings updated", nil)
	return updated, nil
}

// Reset drops stored overrides so the defaults apply again
func (s *Store) Reset(ctx context.Context) (domain.SelectorSettings, error) {
	defaults := domain.DefaultSelectorSettings()
	if s.storage == nil {
		return defaults, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Delete(ctx, StorageKey); err != nil {
		return domain.SelectorSettings{}, coreerrors.WrapError(err, "failed to reset selector settings")
	}
	return defaults, nil
}

func (s *Store) getLocked(ctx context.Context) (domain.SelectorSettings, error) {
	defaults := domain.DefaultSelectorSettings()
	if s.storage == nil {
		return defaults, nil
	}

	data, err := s.storage.Get(ctx, StorageKey)
	if err != nil {
		if errors.Is(err, interfaces.ErrKeyNotFound) {
			return defaults, nil
		}
		return domain.SelectorSettings{}, coreerrors.WrapError(err, "failed to read selector settings")
	}

	var stored domain.SelectorSettings
	if err := json.Unmarshal(data, &stored); err != nil {
		s.logger.Warn("Ignoring malformed selector settings", map[string]interface{}{"error": err.Error()})
		return defaults, nil
	}
	return defaults.Merge(trimmed(stored)), nil
}

func trimmed(s domain.SelectorSettings) domain.SelectorSettings {
	return domain.SelectorSettings{
		Article: strings.TrimSpace(s.Article),
		Title:   strings.TrimSpace(s.Title),
		Content: strings.TrimSpace(s.Content),
		Images:  strings.TrimSpace(s.Images),
	}
}
