package og

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/math/fixed"
)

// countingFont serves gobold and records how many fetches were made.
type countingFont struct {
	calls atomic.Int32
	err   error
	gate  chan struct{}
}

func (f *countingFont) Fetch(ctx context.Context) ([]byte, error) {
	f.calls.Add(1)
	if f.gate != nil {
		<-f.gate
	}
	if f.err != nil {
		return nil, f.err
	}
	return gobold.TTF, nil
}

func newTestRenderer(src FontSource) *Renderer {
	return NewRenderer(NewFontLoader(src), Options{
		SiteName: "Example Blog",
		SiteURL:  "https://blog.example.com",
	})
}

func TestRenderDimensions(t *testing.T) {
	r := newTestRenderer(EmbeddedFont())
	titles := []string{
		"Hello World",
		strings.Repeat("a", 150),
		strings.Repeat("word ", 60),
		"日本語のタイトル",
	}
	for _, title := range titles {
		b, err := r.Render(context.Background(), title)
		require.NoError(t, err)
		cfg, format, err := image.DecodeConfig(bytes.NewReader(b))
		require.NoError(t, err)
		assert.Equal(t, "png", format)
		assert.Equal(t, Width, cfg.Width)
		assert.Equal(t, Height, cfg.Height)
	}
}

func TestRenderDrawsOnWhite(t *testing.T) {
	r := newTestRenderer(EmbeddedFont())
	b, err := r.Render(context.Background(), "Hello World")
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(b))
	require.NoError(t, err)

	rr, gg, bb, _ := img.At(0, 0).RGBA()
	assert.Equal(t, [3]uint32{0xffff, 0xffff, 0xffff}, [3]uint32{rr, gg, bb}, "corner should be background")

	inked := 0
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if r, _, _, _ := img.At(x, y).RGBA(); r < 0x8000 {
				inked++
			}
		}
	}
	assert.Greater(t, inked, 500, "expected logo and text pixels")
}

func TestLayoutHeading(t *testing.T) {
	r := newTestRenderer(EmbeddedFont())

	card, err := r.Layout(context.Background(), "Hello World")
	require.NoError(t, err)
	assert.Equal(t, "Hello World", card.Heading)
	assert.Equal(t, "Hello World", strings.Join(card.Lines, " "))
	assert.Equal(t, "Example Blog", card.Label)
	assert.Equal(t, "https://blog.example.com", card.Footer)

	card, err = r.Layout(context.Background(), strings.Repeat("a", 150))
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("a", 140)+"...", card.Heading)
	assert.Equal(t, card.Heading, strings.Join(card.Lines, ""))
}

func TestLayoutShrinksLongHeadings(t *testing.T) {
	r := newTestRenderer(EmbeddedFont())

	short, err := r.Layout(context.Background(), "Hi")
	require.NoError(t, err)
	long, err := r.Layout(context.Background(), strings.Repeat("lorem ipsum ", 12))
	require.NoError(t, err)

	assert.Equal(t, float64(maxHeadSize), short.HeadingSize)
	assert.Less(t, long.HeadingSize, short.HeadingSize)
	assert.GreaterOrEqual(t, long.HeadingSize, float64(minHeadSize))
}

func TestRenderMissingTitle(t *testing.T) {
	src := &countingFont{}
	r := newTestRenderer(src)

	_, err := r.Render(context.Background(), "")
	require.ErrorIs(t, err, ErrMissingTitle)
	assert.Equal(t, int32(0), src.calls.Load(), "no font fetch without a title")
}

func TestFontFetchedOnce(t *testing.T) {
	src := &countingFont{}
	r := newTestRenderer(src)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Render(context.Background(), "Concurrent")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	_, err := r.Render(context.Background(), "Again")
	require.NoError(t, err)
	assert.Equal(t, int32(1), src.calls.Load())
}

func TestFontFetchFailure(t *testing.T) {
	src := &countingFont{err: errors.New("asset missing")}
	r := newTestRenderer(src)

	_, err := r.Render(context.Background(), "Hello")
	require.ErrorIs(t, err, ErrFontUnavailable)
	assert.Contains(t, err.Error(), "asset missing")

	_, err = r.Render(context.Background(), "Hello")
	require.ErrorIs(t, err, ErrFontUnavailable)
	assert.Equal(t, int32(1), src.calls.Load(), "failed fetch is not retried")
}

func TestFontParseFailure(t *testing.T) {
	src := FontSourceFunc(func(context.Context) ([]byte, error) {
		return []byte("not a font"), nil
	})
	_, err := NewFontLoader(src).Load(context.Background())
	require.ErrorIs(t, err, ErrFontUnavailable)
}

func TestFontLoadCancelledWaiter(t *testing.T) {
	src := &countingFont{gate: make(chan struct{})}
	loader := NewFontLoader(src)
	loader.Prefetch()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := loader.Load(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	close(src.gate)
	f, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, f)
	assert.Equal(t, int32(1), src.calls.Load())
}

func TestFileFont(t *testing.T) {
	_, err := FileFont("testdata/does-not-exist.ttf").Fetch(context.Background())
	require.Error(t, err)

	_, err = NewFontLoader(FileFont("testdata/does-not-exist.ttf")).Load(context.Background())
	require.ErrorIs(t, err, ErrFontUnavailable)
}

func TestComposePanicBecomesRenderError(t *testing.T) {
	r := newTestRenderer(EmbeddedFont())

	img, err := r.compose(Card{Label: "x", Lines: []string{"y"}, HeadingSize: 30})
	require.ErrorIs(t, err, ErrRender)
	assert.Nil(t, img)
}

func TestRenderRecoversLayoutPanic(t *testing.T) {
	var r Renderer // no font loader

	b, err := r.Render(context.Background(), "Hello")
	require.ErrorIs(t, err, ErrRender)
	assert.NotErrorIs(t, err, ErrFontUnavailable)
	assert.Nil(t, b)
}

func TestLayoutDropsLinesAtMinimumSize(t *testing.T) {
	r := newTestRenderer(EmbeddedFont())
	r.region.Max.Y = r.region.Min.Y + 60

	title := strings.Repeat("W", 150)
	card, err := r.Layout(context.Background(), title)
	require.NoError(t, err)
	assert.Equal(t, float64(minHeadSize), card.HeadingSize)

	f, err := r.fonts.Load(context.Background())
	require.NoError(t, err)
	face, err := newFace(f, minHeadSize)
	require.NoError(t, err)
	defer face.Close()

	all := wrap(face, Heading(title), fixed.I(r.region.Dx()))
	require.Greater(t, len(all), len(card.Lines), "the full heading does not fit 60px")
	require.NotEmpty(t, card.Lines)
	assert.Equal(t, all[:len(card.Lines)], card.Lines)
	assert.LessOrEqual(t, len(card.Lines)*face.Metrics().Height.Ceil(), 60)

	b, err := r.Render(context.Background(), title)
	require.NoError(t, err)
	cfg, err := png.DecodeConfig(bytes.NewReader(b))
	require.NoError(t, err)
	assert.Equal(t, Width, cfg.Width)
	assert.Equal(t, Height, cfg.Height)
}
