package session

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"go.etcd.io/bbolt"

	"github.com/socialpost/lilogin/linkedin"
)

// DefaultOpenTimeout bounds how long NewFileStorage waits for another process
// holding the database open.
const DefaultOpenTimeout = time.Second

var storageBucket = []byte("storage")

// FileStorage is a Storage kept in a bbolt database, so values survive
// restarts of the process.  Only one process can have the file open at a
// time; Close releases it.
type FileStorage struct {
	db *bbolt.DB
}

var _ Storage = (*FileStorage)(nil)

// DefaultFileStoragePath returns lilogin/storage.db under the user's XDG data
// directory, creating the directory if needed.
func DefaultFileStoragePath() (string, error) {
	const op = "session.DefaultFileStoragePath"
	path, err := xdg.DataFile("lilogin/storage.db")
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return path, nil
}

// NewFileStorage opens (or creates) the database at path, creating its
// directory if needed.
// Supported options:
//	WithOpenTimeout
func NewFileStorage(path string, opt ...Option) (*FileStorage, error) {
	const op = "session.NewFileStorage"
	if path == "" {
		return nil, fmt.Errorf("%s: path is empty: %w", op, linkedin.ErrInvalidParameter)
	}
	opts := getOpts(opt...)
	path = filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("%s: unable to create directory: %w", op, err)
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: opts.withOpenTimeout})
	if err != nil {
		return nil, fmt.Errorf("%s: unable to open %s: %w", op, path, err)
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(storageBucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: unable to create bucket: %w", op, err)
	}
	return &FileStorage{db: db}, nil
}

// Close closes the underlying database.
func (s *FileStorage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *FileStorage) Get(ctx context.Context, key string) (string, bool, error) {
	const op = "FileStorage.Get"
	if err := ctx.Err(); err != nil {
		return "", false, fmt.Errorf("%s: %w", op, err)
	}
	var (
		value string
		ok    bool
	)
	err := s.db.View(func(tx *bbolt.Tx) error {
		// a cursor tells an empty value apart from a missing key
		k, v := tx.Bucket(storageBucket).Cursor().Seek([]byte(key))
		if k == nil || !bytes.Equal(k, []byte(key)) {
			return nil
		}
		value, ok = string(v), true
		return nil
	})
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", op, err)
	}
	return value, ok, nil
}

func (s *FileStorage) Set(ctx context.Context, key, value string) error {
	const op = "FileStorage.Set"
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(storageBucket).Put([]byte(key), []byte(value))
	}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *FileStorage) Remove(ctx context.Context, key string) error {
	const op = "FileStorage.Remove"
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(storageBucket).Delete([]byte(key))
	}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
