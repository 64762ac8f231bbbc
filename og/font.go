package og

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
)

const fontFetchTimeout = 30 * time.Second

// FontSource supplies the raw bytes of the bold face used for all card text.
type FontSource interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// FontSourceFunc adapts a plain function to FontSource.
type FontSourceFunc func(ctx context.Context) ([]byte, error)

// Fetch calls f.
func (f FontSourceFunc) Fetch(ctx context.Context) ([]byte, error) {
	return f(ctx)
}

// EmbeddedFont returns the Go Bold face bundled with the binary.
func EmbeddedFont() FontSource {
	return FontSourceFunc(func(context.Context) ([]byte, error) {
		return gobold.TTF, nil
	})
}

// FileFont reads a TrueType or OpenType file from disk.
func FileFont(path string) FontSource {
	return FontSourceFunc(func(ctx context.Context) ([]byte, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read font %s: %w", path, err)
		}
		return b, nil
	})
}

// FontLoader fetches and parses the card font exactly once per process.
// The first call to Prefetch or Load starts the fetch; every caller waits on
// that same fetch, and its outcome (font or error) is kept for good.
type FontLoader struct {
	src  FontSource
	once sync.Once
	done chan struct{}
	font *opentype.Font
	err  error
}

// NewFontLoader creates a FontLoader reading from src.
func NewFontLoader(src FontSource) *FontLoader {
	return &FontLoader{src: src, done: make(chan struct{})}
}

// Prefetch starts the font fetch in the background if it has not started yet.
func (l *FontLoader) Prefetch() {
	l.once.Do(func() {
		go l.fetch()
	})
}

func (l *FontLoader) fetch() {
	defer close(l.done)

	ctx, cancel := context.WithTimeout(context.Background(), fontFetchTimeout)
	defer cancel()

	b, err := l.src.Fetch(ctx)
	if err != nil {
		l.err = fmt.Errorf("%w: %w", ErrFontUnavailable, err)
		return
	}
	f, err := opentype.Parse(b)
	if err != nil {
		l.err = fmt.Errorf("%w: parse: %w", ErrFontUnavailable, err)
		return
	}
	l.font = f
}

// Load waits for the font. A cancelled ctx only abandons this caller's wait;
// the fetch itself keeps running for the others.
func (l *FontLoader) Load(ctx context.Context) (*opentype.Font, error) {
	l.Prefetch()
	select {
	case <-l.done:
		return l.font, l.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
