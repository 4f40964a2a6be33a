// Package datasource defines how input files are enumerated and opened.
package datasource

import (
	"context"
	"io"
)

// Opener opens one input path for sequential reading. Implementations must be
// safe for concurrent use.
type Opener interface {
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(ctx context.Context, path string) (io.ReadCloser, error)

// Open calls f(ctx, path).
func (f OpenerFunc) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	return f(ctx, path)
}
