// Package pool manages the picking, watching and trading stock pools.
// Pools are stored as JSON files, one per pool, and written atomically.
package pool

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/stockpilot/internal/metrics"
)

// Type identifies one of the three stock pools
type Type string

const (
	Picking  Type = "picking"
	Watching Type = "watching"
	Trading  Type = "trading"
)

var (
	ErrAlreadyInPool = errors.New("symbol already in pool")
	ErrNotInPool     = errors.New("symbol not in pool")
	ErrUnknownPool   = errors.New("unknown pool")
)

// Note holds freeform analysis text for a pool entry
type Note struct {
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TradePlan holds the planned entry and exit levels for a trading pool entry
type TradePlan struct {
	BuyPrice   decimal.Decimal `json:"buy_price"`
	Shares     int64           `json:"shares"`
	StopLoss   decimal.Decimal `json:"stop_loss"`
	TakeProfit decimal.Decimal `json:"take_profit"`
}

// Entry is one tracked symbol in a pool
type Entry struct {
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Note        Note            `json:"note"`
	Tags        []string        `json:"tags,omitempty"`
	Plan        *TradePlan      `json:"plan,omitempty"`
	LastClose   decimal.Decimal `json:"last_close"`
	RefreshedAt time.Time       `json:"refreshed_at"`
	AddedAt     time.Time       `json:"added_at"`
}

// Store provides concurrent-safe access to the pool files
type Store struct {
	dir    string
	mu     sync.Mutex
	logger *logrus.Logger
}

// NewStore creates a pool store rooted at dir, creating it if needed
func NewStore(dir string, logger *logrus.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create pool dir: %w", err)
	}
	return &Store{dir: dir, logger: logger}, nil
}

func (s *Store) filePath(t Type) (string, error) {
	switch t {
	case Picking, Watching, Trading:
		return filepath.Join(s.dir, string(t)+"_pool.json"), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPool, t)
	}
}

// Load reads all entries from a pool. A missing file is an empty pool.
func (s *Store) Load(t Type) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(t)
}

func (s *Store) load(t Type) ([]Entry, error) {
	path, err := s.filePath(t)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("failed to read pool file: %w", err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse pool file %s: %w", path, err)
	}
	return entries, nil
}

// save writes entries atomically with a temp file and rename
func (s *Store) save(t Type, entries []Entry) error {
	path, err := s.filePath(t)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode pool: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, string(t)+"_pool_*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp pool file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write pool file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close pool file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace pool file: %w", err)
	}

	metrics.UpdatePoolSize(string(t), len(entries))
	return nil
}

// Add appends a new symbol to a pool
func (s *Store) Add(t Type, code, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load(t)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.Code == code {
			return fmt.Errorf("%w: %s", ErrAlreadyInPool, code)
		}
	}

	entries = append(entries, Entry{
		Code:    code,
		Name:    name,
		AddedAt: time.Now().UTC(),
	})
	return s.save(t, entries)
}

// Remove deletes a symbol from a pool
func (s *Store) Remove(t Type, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load(t)
	if err != nil {
		return err
	}

	kept := entries[:0]
	found := false
	for _, e := range entries {
		if e.Code == code {
			found = true
			continue
		}
		kept = append(kept, e)
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrNotInPool, code)
	}
	return s.save(t, kept)
}

// UpdateNote replaces the note content for a symbol
func (s *Store) UpdateNote(t Type, code, content string) error {
	return s.update(t, code, func(e *Entry) {
		e.Note = Note{Content: content, UpdatedAt: time.Now().UTC()}
	})
}

// UpdateTags replaces the tag list for a symbol
func (s *Store) UpdateTags(t Type, code string, tags []string) error {
	return s.update(t, code, func(e *Entry) {
		e.Tags = tags
	})
}

// SetPlan attaches a trade plan to a symbol
func (s *Store) SetPlan(t Type, code string, plan TradePlan) error {
	return s.update(t, code, func(e *Entry) {
		e.Plan = &plan
	})
}

// SetLastClose records the latest known close for a symbol
func (s *Store) SetLastClose(t Type, code string, close decimal.Decimal) error {
	return s.update(t, code, func(e *Entry) {
		e.LastClose = close
		e.RefreshedAt = time.Now().UTC()
	})
}

func (s *Store) update(t Type, code string, fn func(*Entry)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load(t)
	if err != nil {
		return err
	}
	for i := range entries {
		if entries[i].Code == code {
			fn(&entries[i])
			return s.save(t, entries)
		}
	}
	return fmt.Errorf("%w: %s", ErrNotInPool, code)
}

// Move transfers a symbol between pools, keeping its note and tags
func (s *Store) Move(code string, from, to Type) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fromEntries, err := s.load(from)
	if err != nil {
		return err
	}

	var moved *Entry
	kept := make([]Entry, 0, len(fromEntries))
	for i := range fromEntries {
		if fromEntries[i].Code == code {
			entry := fromEntries[i]
			moved = &entry
			continue
		}
		kept = append(kept, fromEntries[i])
	}
	if moved == nil {
		return fmt.Errorf("%w: %s", ErrNotInPool, code)
	}

	toEntries, err := s.load(to)
	if err != nil {
		return err
	}
	for _, e := range toEntries {
		if e.Code == code {
			return fmt.Errorf("%w: %s", ErrAlreadyInPool, code)
		}
	}
	toEntries = append(toEntries, *moved)

	if err := s.save(to, toEntries); err != nil {
		return err
	}
	return s.save(from, kept)
}
