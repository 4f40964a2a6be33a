package file

import (
	"context"
	"fmt"
	"io"
	"os"
)

// Local opens files from the local disk. The zero value is ready to use and
// safe for concurrent use by multiple goroutines.
type Local struct {
	// NoAdvise disables the sequential-access hint given to the kernel after
	// each successful open.
	NoAdvise bool
}

// NewLocal returns a Local opener.
func NewLocal() *Local { return &Local{} }

// Open opens path for reading and returns the *os.File as an io.ReadCloser.
//
// Behavior:
//   - If ctx is already done, Open returns ctx.Err() without touching the
//     filesystem.
//   - Filesystem errors are wrapped with the path while still permitting
//     errors.Is checks (e.g. errors.Is(err, os.ErrNotExist)).
//   - On success the kernel is told the file will be read sequentially
//     (best-effort, Linux only).
func (l *Local) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if !l.NoAdvise {
		adviseSequential(f)
	}
	return f, nil
}
