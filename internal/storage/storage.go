// Package storage wraps the file operations the dataset needs: atomic
// replacement, appends, and opening files with a typed not-found error.
package storage

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/couchcryptid/camels-de1h/internal/domain"
	"github.com/google/renameio/v2"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Staged is a fully written temporary file waiting to replace its target.
type Staged struct {
	path string
	file *renameio.PendingFile
}

// Stage writes the new content of path into a temporary file in the same
// directory. Nothing is visible at path until Commit.
func Stage(path string, write func(w io.Writer) error) (*Staged, error) {
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return nil, fmt.Errorf("create directory for %s: %w", path, err)
	}
	pf, err := renameio.NewPendingFile(path, renameio.WithPermissions(filePerm))
	if err != nil {
		return nil, fmt.Errorf("stage %s: %w", path, err)
	}

	bw := bufio.NewWriter(pf)
	if err := write(bw); err != nil {
		_ = pf.Cleanup()
		return nil, fmt.Errorf("write %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		_ = pf.Cleanup()
		return nil, fmt.Errorf("write %s: %w", path, err)
	}
	return &Staged{path: path, file: pf}, nil
}

// Path returns the target path.
func (s *Staged) Path() string { return s.path }

// Commit renames the staged file over its target.
func (s *Staged) Commit() error {
	if err := s.file.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}

// Discard removes the temporary file. It is a no-op after Commit.
func (s *Staged) Discard() { _ = s.file.Cleanup() }

// WriteAtomic replaces path with the output of write, creating parent
// directories as needed.
func WriteAtomic(path string, write func(w io.Writer) error) error {
	s, err := Stage(path, write)
	if err != nil {
		return err
	}
	defer s.Discard()
	return s.Commit()
}

// Append adds the output of write to the end of an existing file.
func Append(path string, write func(w io.Writer) error) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, filePerm)
	if err != nil {
		return wrapOpen(path, err)
	}
	bw := bufio.NewWriter(f)
	if err := write(bw); err != nil {
		f.Close()
		return fmt.Errorf("append %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("append %s: %w", path, err)
	}
	return f.Close()
}

// Read opens path and hands it to read. A missing file yields
// domain.ErrNotFound.
func Read(path string, read func(r io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return wrapOpen(path, err)
	}
	defer f.Close()
	return read(bufio.NewReader(f))
}

// Exists reports whether path is an existing regular file.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func wrapOpen(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", path, domain.ErrNotFound)
	}
	return fmt.Errorf("open %s: %w", path, err)
}

// Digest returns the hex SHA-256 of the content of path. A missing file
// yields domain.ErrNotFound.
func Digest(path string) (string, error) {
	h := sha256.New()
	err := Read(path, func(r io.Reader) error {
		_, err := io.Copy(h, r)
		return err
	})
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
