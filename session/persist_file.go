package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

var _ Persister = (*FilePersister)(nil)

// FilePersister stores the session as <dir>/auth-storage.json, readable only by the owner
type FilePersister struct {
	path string
}

func NewFilePersister(dir string) (*FilePersister, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("[session NewFilePersister] create %s: %w", dir, err)
	}
	return &FilePersister{path: filepath.Join(dir, StorageName+".json")}, nil
}

func (f *FilePersister) Path() string {
	return f.path
}

func (f *FilePersister) Load(_ context.Context) (Session, bool, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Session{}, false, nil
	}
	if err != nil {
		return Session{}, false, fmt.Errorf("read %s: %w", f.path, err)
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		// A corrupt file is treated as no session rather than a fatal error
		return Session{}, false, nil
	}
	return s, true, nil
}

// Save replaces the entry atomically through a temp file and rename
func (f *FilePersister) Save(_ context.Context, s Session) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), StorageName+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write session: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close session: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("rename session: %w", err)
	}
	return nil
}
