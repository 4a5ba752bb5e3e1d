package resource

import (
	"context"
	"io"
)

type ioWriter struct {
	ctx context.Context
	w   io.Writer
	c   *Controller
}

// NewRateLimitedWriter returns a writer that charges every write against
// the IO budget of c before passing it to w.
func NewRateLimitedWriter(ctx context.Context, w io.Writer, c *Controller) io.Writer {
	if c == nil || c.io == nil {
		return w
	}
	return &ioWriter{ctx: ctx, w: w, c: c}
}

func (w *ioWriter) Write(p []byte) (int, error) {
	if err := w.c.AcquireIO(w.ctx, len(p)); err != nil {
		return 0, err
	}
	return w.w.Write(p)
}

type ioReader struct {
	ctx context.Context
	r   io.Reader
	c   *Controller
}

// NewRateLimitedReader returns a reader that charges len(p) against the IO
// budget of c before every read. Short reads are over-charged.
func NewRateLimitedReader(ctx context.Context, r io.Reader, c *Controller) io.Reader {
	if c == nil || c.io == nil {
		return r
	}
	return &ioReader{ctx: ctx, r: r, c: c}
}

func (r *ioReader) Read(p []byte) (int, error) {
	if err := r.c.AcquireIO(r.ctx, len(p)); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}
