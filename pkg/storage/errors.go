package storage

import (
	"errors"
	"fmt"
	"io/fs"
)

var (
	ErrNoBackupFound = errors.New("no backup found to restore")
	ErrPermission    = errors.New("permission denied")
)

// IOError wraps a failed filesystem operation on a policy or backup file.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// Is lets permission failures match ErrPermission.
func (e *IOError) Is(target error) bool {
	return target == ErrPermission && errors.Is(e.Err, fs.ErrPermission)
}

func ioErr(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Op: op, Path: path, Err: err}
}
