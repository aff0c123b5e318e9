package output

import (
	"fmt"
	"path/filepath"

	"github.com/franz/fma-janitor/internal/util"
	"github.com/gofrs/flock"
)

// LockPath returns the lock file guarding an output directory. It sits next
// to the directory so that taking the lock never creates the directory.
func LockPath(dir string) string {
	return filepath.Clean(dir) + ".lock"
}

// Lock is an exclusive hold on an output directory
type Lock struct {
	fl *flock.Flock
}

// AcquireLock takes the output lock without blocking. It fails with
// util.ErrLocked when another run holds it.
func AcquireLock(dir string) (*Lock, error) {
	path := LockPath(dir)
	if err := util.RetryableMkdirAll(filepath.Dir(path), 0755, util.DefaultRetryConfig()); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", util.ErrLocked, path)
	}
	return &Lock{fl: fl}, nil
}

// Path returns the lock file path
func (l *Lock) Path() string {
	return l.fl.Path()
}

// Release drops the lock. The lock file is left in place.
func (l *Lock) Release() error {
	return l.fl.Unlock()
}
