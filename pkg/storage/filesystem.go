// Package storage reads, writes, backs up and restores the managed-policy file.
package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/felixgeelhaar/zerobrave/pkg/domain/policy"
	"github.com/felixgeelhaar/zerobrave/pkg/source"
)

// BackupTimeFormat is fixed width so lexical order equals creation order.
const BackupTimeFormat = "20060102_150405.000"

const (
	dirPerm  = 0755
	filePerm = 0644
)

// BackupHandle describes one backup file next to the policy file.
type BackupHandle struct {
	Path      string
	CreatedAt time.Time
}

// PolicyStore manages a single policy file and its backups.
type PolicyStore struct {
	path string
}

func NewPolicyStore(path string) *PolicyStore {
	return &PolicyStore{path: filepath.Clean(path)}
}

// Path returns the live policy file location.
func (s *PolicyStore) Path() string {
	return s.path
}

// Exists reports whether the live policy file is present.
func (s *PolicyStore) Exists() bool {
	info, err := os.Stat(s.path)
	return err == nil && !info.IsDir()
}

// Read loads and decodes the live file.
func (s *PolicyStore) Read() (policy.Document, error) {
	data, err := s.ReadRaw()
	if err != nil {
		return nil, err
	}
	doc, err := source.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	return doc, nil
}

// ReadRaw returns the live file's bytes.
func (s *PolicyStore) ReadRaw() ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, ioErr("read", s.path, err)
	}
	return data, nil
}

// Write replaces the live file with doc. The content is written to a
// temporary file in the same directory and renamed over the target.
func (s *PolicyStore) Write(doc policy.Document) error {
	data, err := doc.Encode()
	if err != nil {
		return err
	}
	return s.writeAtomic(data)
}

func (s *PolicyStore) writeAtomic(data []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return ioErr("create directory", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return ioErr("create temp file", dir, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return ioErr("write", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return ioErr("sync", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return ioErr("close", tmpName, err)
	}
	// Brave runs unprivileged and must be able to read the file.
	if err := os.Chmod(tmpName, filePerm); err != nil {
		cleanup()
		return ioErr("chmod", tmpName, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		cleanup()
		return ioErr("replace", s.path, err)
	}
	return nil
}

// Backup copies the live file to "<path>_<timestamp>". It returns nil, nil
// when there is nothing to back up.
func (s *PolicyStore) Backup(now time.Time) (*BackupHandle, error) {
	info, err := os.Stat(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, ioErr("stat", s.path, err)
	}
	if info.IsDir() {
		return nil, ioErr("backup", s.path, errors.New("is a directory"))
	}

	handle := &BackupHandle{
		Path:      s.path + "_" + now.Format(BackupTimeFormat),
		CreatedAt: now,
	}
	if err := copyFile(s.path, handle.Path); err != nil {
		return nil, err
	}
	return handle, nil
}

// Backups lists existing backups, newest first.
func (s *PolicyStore) Backups() ([]BackupHandle, error) {
	dir := filepath.Dir(s.path)
	prefix := filepath.Base(s.path) + "_"

	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, ioErr("list", dir, err)
	}

	var backups []BackupHandle
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix) {
			continue
		}
		ts, err := time.ParseInLocation(BackupTimeFormat, strings.TrimPrefix(name, prefix), time.Local)
		if err != nil {
			continue
		}
		backups = append(backups, BackupHandle{Path: filepath.Join(dir, name), CreatedAt: ts})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Path > backups[j].Path
	})
	return backups, nil
}

// LatestBackup returns the most recent backup or ErrNoBackupFound.
func (s *PolicyStore) LatestBackup() (*BackupHandle, error) {
	backups, err := s.Backups()
	if err != nil {
		return nil, err
	}
	if len(backups) == 0 {
		return nil, ErrNoBackupFound
	}
	return &backups[0], nil
}

// Restore copies the most recent backup over the live file. The backup is
// not parsed or validated.
func (s *PolicyStore) Restore() (*BackupHandle, error) {
	latest, err := s.LatestBackup()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(latest.Path)
	if err != nil {
		return nil, ioErr("read", latest.Path, err)
	}
	if err := s.writeAtomic(data); err != nil {
		return nil, err
	}
	return latest, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return ioErr("open", src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return ioErr("stat", src, err)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return ioErr("create", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return ioErr("copy", dst, err)
	}
	if err := out.Close(); err != nil {
		return ioErr("close", dst, err)
	}
	// backups keep the source modification time
	_ = os.Chtimes(dst, info.ModTime(), info.ModTime())
	return nil
}
