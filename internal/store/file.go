package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const slotExt = ".toml"

// FileStore implements Store as a directory of TOML files, one per slot.
type FileStore struct {
	dir string
}

// NewFileStore creates dir if needed and returns a store rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: create directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the directory slots are written to.
func (f *FileStore) Dir() string {
	return f.dir
}

func (f *FileStore) path(id string) string {
	return filepath.Join(f.dir, id+slotExt)
}

// Save writes the slot atomically through a temp file and rename.
func (f *FileStore) Save(ctx context.Context, s *Slot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := prepare(s); err != nil {
		return err
	}
	data, err := toml.Marshal(s)
	if err != nil {
		return fmt.Errorf("store: marshal slot %q: %w", s.ID, err)
	}

	path := f.path(s.ID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("store: write temp slot file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("store: rename slot file: %w", err)
	}
	return nil
}

// Load reads and decodes one slot file.
func (f *FileStore) Load(ctx context.Context, id string) (Slot, error) {
	if err := ctx.Err(); err != nil {
		return Slot{}, err
	}
	if err := checkID(id); err != nil {
		return Slot{}, err
	}
	return readSlot(f.path(id))
}

func readSlot(path string) (Slot, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Slot{}, fmt.Errorf("%w: %q", ErrSlotNotFound, strings.TrimSuffix(filepath.Base(path), slotExt))
	}
	if err != nil {
		return Slot{}, fmt.Errorf("store: read slot file: %w", err)
	}
	var s Slot
	if err := toml.Unmarshal(data, &s); err != nil {
		return Slot{}, fmt.Errorf("store: parse %s: %w", filepath.Base(path), err)
	}
	return s, nil
}

// List decodes every slot file in the directory. Files that fail to parse
// are reported as an error rather than skipped.
func (f *FileStore) List(ctx context.Context) ([]SlotInfo, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("store: read directory: %w", err)
	}
	var out []SlotInfo
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.IsDir() || filepath.Ext(e.Name()) != slotExt {
			continue
		}
		s, err := readSlot(filepath.Join(f.dir, e.Name()))
		if err != nil {
			return nil, err
		}
		out = append(out, info(s))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].SavedAt.Equal(out[j].SavedAt) {
			return out[i].SavedAt.After(out[j].SavedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Delete removes a slot file.
func (f *FileStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkID(id); err != nil {
		return err
	}
	err := os.Remove(f.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %q", ErrSlotNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("store: delete slot %q: %w", id, err)
	}
	return nil
}

// Close is a no-op; FileStore holds no open handles.
func (f *FileStore) Close() error {
	return nil
}
