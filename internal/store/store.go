// Package store persists game sessions into named save slots. Two backends
// share the Store interface: a SQLite database holding every slot, and a
// directory of TOML files with one file per slot.
package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/papapumpkin/idlecore/internal/bignum"
	"github.com/papapumpkin/idlecore/internal/game"
)

// ErrSlotNotFound is returned when a slot id has no saved data.
var ErrSlotNotFound = errors.New("save slot not found")

// ErrInvalidID is returned for slot ids that cannot be used as keys.
var ErrInvalidID = errors.New("invalid slot id")

// Slot is one saved session.
type Slot struct {
	ID      string     `toml:"id"`
	Name    string     `toml:"name"`
	SavedAt time.Time  `toml:"saved_at"`
	State   game.State `toml:"state"`
}

// SlotInfo summarizes a slot for listings without its full state.
type SlotInfo struct {
	ID         string
	Name       string
	Definition string
	SavedAt    time.Time
	AllTime    bignum.Number
	PlayTime   float64
}

// Store saves and loads slots. Implementations are safe for use by one
// goroutine at a time.
type Store interface {
	// Save writes s, assigning a new ID and SavedAt when they are empty.
	Save(ctx context.Context, s *Slot) error
	// Load returns the slot with the given id or ErrSlotNotFound.
	Load(ctx context.Context, id string) (Slot, error)
	// List returns every slot, most recently saved first.
	List(ctx context.Context) ([]SlotInfo, error)
	// Delete removes a slot or returns ErrSlotNotFound.
	Delete(ctx context.Context, id string) error
	// Close releases underlying resources.
	Close() error
}

// Backend names accepted by Open.
const (
	BackendSQLite = "sqlite"
	BackendTOML   = "toml"
)

// Open creates the store for backend under dir. For SQLite dbName is the
// database file name; the TOML backend keeps one file per slot in dir.
func Open(ctx context.Context, backend, dir, dbName string) (Store, error) {
	switch backend {
	case BackendSQLite:
		return NewSQLiteStore(ctx, filepath.Join(dir, dbName))
	case BackendTOML:
		return NewFileStore(dir)
	default:
		return nil, fmt.Errorf("store: unknown backend %q", backend)
	}
}

// Resolve finds a slot by id, unique id prefix or exact name.
func Resolve(ctx context.Context, st Store, ref string) (SlotInfo, error) {
	infos, err := st.List(ctx)
	if err != nil {
		return SlotInfo{}, err
	}
	var matches []SlotInfo
	for _, info := range infos {
		if info.ID == ref || info.Name == ref {
			return info, nil
		}
		if strings.HasPrefix(info.ID, ref) {
			matches = append(matches, info)
		}
	}
	switch len(matches) {
	case 0:
		return SlotInfo{}, fmt.Errorf("%w: %q", ErrSlotNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return SlotInfo{}, fmt.Errorf("store: slot %q is ambiguous (%d matches)", ref, len(matches))
	}
}

// prepare fills in a missing id and timestamp.
func prepare(s *Slot) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if err := checkID(s.ID); err != nil {
		return err
	}
	if s.SavedAt.IsZero() {
		s.SavedAt = time.Now().UTC()
	}
	if s.Name == "" {
		s.Name = s.State.Definition
	}
	return nil
}

func checkID(id string) error {
	if id == "" || strings.ContainsAny(id, `/\.`) {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

func info(s Slot) SlotInfo {
	return SlotInfo{
		ID:         s.ID,
		Name:       s.Name,
		Definition: s.State.Definition,
		SavedAt:    s.SavedAt,
		AllTime:    s.State.AllTime,
		PlayTime:   s.State.PlayTime,
	}
}
