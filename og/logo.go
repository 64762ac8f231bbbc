package og

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// LogoSize is the edge length, in pixels, of the logo mark on the card.
const LogoSize = 50

// logoSVG is the two-path mark drawn in the top-left corner. The %s verbs
// receive the stroke colour.
const logoSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="24" height="24" viewBox="0 0 24 24">
<path d="M4 4h16v16H4Z" fill="none" stroke="%s" stroke-width="2" stroke-linecap="round" stroke-linejoin="round"/>
<path d="M8 16l4-8l4 8M9.5 13h5" fill="none" stroke="%s" stroke-width="2" stroke-linecap="round" stroke-linejoin="round"/>
</svg>`

func hexColor(c color.Color) string {
	r, g, b, _ := color.NRGBAModel.Convert(c).RGBA()
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}

// drawLogo strokes the logo mark onto dst with its top-left corner at p.
func drawLogo(dst *image.RGBA, p image.Point, stroke color.Color) error {
	hex := hexColor(stroke)
	icon, err := oksvg.ReadIconStream(bytes.NewReader([]byte(fmt.Sprintf(logoSVG, hex, hex))))
	if err != nil {
		return fmt.Errorf("parse logo: %w", err)
	}
	icon.SetTarget(float64(p.X), float64(p.Y), LogoSize, LogoSize)

	b := dst.Bounds()
	scanner := rasterx.NewScannerGV(b.Dx(), b.Dy(), dst, b)
	raster := rasterx.NewDasher(b.Dx(), b.Dy(), scanner)
	icon.Draw(raster, 1.0)
	return nil
}
