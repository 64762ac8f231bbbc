package og

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Layout metrics in pixels at 72 DPI.
const (
	padding      = 48
	labelSize    = 28
	labelGap     = 16
	footerSize   = 22
	headingGap   = 28
	maxHeadSize  = 56
	minHeadSize  = 24
	headSizeStep = 4
)

// Options configures the branding drawn on every card.
type Options struct {
	SiteName   string      // label next to the logo
	SiteURL    string      // footer text
	Background color.Color // default white
	Foreground color.Color // text and logo stroke, default black
}

// Card is the laid-out content of one preview image.
type Card struct {
	Label       string
	Heading     string
	Footer      string
	Lines       []string // Heading wrapped to the content width
	HeadingSize float64

	font *opentype.Font
}

// Renderer turns titles into PNG preview cards. It is safe for concurrent use.
type Renderer struct {
	fonts  *FontLoader
	opts   Options
	region image.Rectangle // heading band
}

// NewRenderer creates a Renderer drawing text with the face from fonts.
func NewRenderer(fonts *FontLoader, opts Options) *Renderer {
	if opts.Background == nil {
		opts.Background = color.White
	}
	if opts.Foreground == nil {
		opts.Foreground = color.Black
	}
	return &Renderer{fonts: fonts, opts: opts, region: headingRegion()}
}

// Layout validates title, waits for the font and wraps the heading.
func (r *Renderer) Layout(ctx context.Context, title string) (Card, error) {
	if title == "" {
		return Card{}, ErrMissingTitle
	}
	f, err := r.fonts.Load(ctx)
	if err != nil {
		return Card{}, err
	}

	card := Card{
		Label:   r.opts.SiteName,
		Heading: Heading(title),
		Footer:  r.opts.SiteURL,
		font:    f,
	}

	maxWidth := fixed.I(r.region.Dx())
	regionHeight := r.region.Dy()
	for size := maxHeadSize; size >= minHeadSize; size -= headSizeStep {
		face, err := newFace(f, float64(size))
		if err != nil {
			return Card{}, fmt.Errorf("%w: %w", ErrRender, err)
		}
		lines := wrap(face, card.Heading, maxWidth)
		lineHeight := face.Metrics().Height.Ceil()
		face.Close()

		card.Lines, card.HeadingSize = lines, float64(size)
		if len(lines)*lineHeight <= regionHeight {
			return card, nil
		}
		if size-headSizeStep < minHeadSize {
			card.Lines = lines[:max(regionHeight/lineHeight, 1)]
		}
	}
	return card, nil
}

// Render lays out title and returns the card encoded as PNG. A panic in the
// font or raster code is returned as ErrRender.
func (r *Renderer) Render(ctx context.Context, title string) (_ []byte, err error) {
	defer recoverRender(&err)

	card, err := r.Layout(ctx, title)
	if err != nil {
		return nil, err
	}
	img, err := r.compose(card)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("%w: encode png: %w", ErrRender, err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) compose(card Card) (img *image.RGBA, err error) {
	defer func() {
		if p := recover(); p != nil {
			img, err = nil, fmt.Errorf("%w: %v", ErrRender, p)
		}
	}()

	img = image.NewRGBA(image.Rect(0, 0, Width, Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(r.opts.Background), image.Point{}, draw.Src)
	ink := image.NewUniform(r.opts.Foreground)

	if err := drawLogo(img, image.Pt(padding, padding), r.opts.Foreground); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}

	label, err := newFace(card.font, labelSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}
	defer label.Close()
	// Center the label's cap height on the logo.
	m := label.Metrics()
	baseline := padding + LogoSize/2 + (m.CapHeight.Ceil())/2
	drawText(img, ink, label, card.Label, padding+LogoSize+labelGap, baseline)

	heading, err := newFace(card.font, card.HeadingSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}
	defer heading.Close()
	region := r.region
	m = heading.Metrics()
	y := region.Min.Y + m.Ascent.Ceil()
	for _, line := range card.Lines {
		drawText(img, ink, heading, line, padding, y)
		y += m.Height.Ceil()
	}

	footer, err := newFace(card.font, footerSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}
	defer footer.Close()
	drawText(img, ink, footer, card.Footer, padding, Height-padding-footer.Metrics().Descent.Ceil())

	return img, nil
}

func recoverRender(err *error) {
	if p := recover(); p != nil {
		*err = fmt.Errorf("%w: %v", ErrRender, p)
	}
}

// headingRegion is the band between the logo row and the footer row.
func headingRegion() image.Rectangle {
	top := padding + LogoSize + headingGap
	bottom := Height - padding - footerSize - headingGap
	return image.Rect(padding, top, Width-padding, bottom)
}

func newFace(f *opentype.Font, size float64) (font.Face, error) {
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

func drawText(dst draw.Image, src image.Image, face font.Face, s string, x, y int) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  src,
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// wrap breaks s into lines no wider than maxWidth. Words that do not fit on
// a line of their own are split between runes.
func wrap(face font.Face, s string, maxWidth fixed.Int26_6) []string {
	var (
		lines []string
		line  string
	)
	for _, word := range strings.Fields(s) {
		candidate := word
		if line != "" {
			candidate = line + " " + word
		}
		if font.MeasureString(face, candidate) <= maxWidth {
			line = candidate
			continue
		}
		if line != "" {
			lines = append(lines, line)
		}
		for font.MeasureString(face, word) > maxWidth {
			head, tail := splitAtWidth(face, word, maxWidth)
			lines = append(lines, head)
			word = tail
		}
		line = word
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}

// splitAtWidth returns the longest prefix of word that fits maxWidth (at
// least one rune) and the remainder.
func splitAtWidth(face font.Face, word string, maxWidth fixed.Int26_6) (string, string) {
	runes := []rune(word)
	n := 1
	for n < len(runes) && font.MeasureString(face, string(runes[:n+1])) <= maxWidth {
		n++
	}
	return string(runes[:n]), string(runes[n:])
}
