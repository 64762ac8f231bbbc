package og

import (
	"image/color"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

func TestHeading(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"short", "Hello World", "Hello World"},
		{"exactly max", strings.Repeat("b", MaxTitleLen), strings.Repeat("b", MaxTitleLen)},
		{"one over", strings.Repeat("c", MaxTitleLen+1), strings.Repeat("c", MaxTitleLen) + "..."},
		{"150 chars", strings.Repeat("a", 150), strings.Repeat("a", 140) + "..."},
		{"multibyte", strings.Repeat("é", 150), strings.Repeat("é", 140) + "..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Heading(tt.title))
		})
	}
}

func TestHeadingNeverExceedsLimit(t *testing.T) {
	for n := 0; n < 400; n += 7 {
		got := Heading(strings.Repeat("x", n))
		if l := utf8.RuneCountInString(got); l > MaxTitleLen+len(ellipsis) {
			t.Fatalf("Heading(%d chars) has %d chars", n, l)
		}
	}
}

func TestWrap(t *testing.T) {
	face := basicfont.Face7x13 // 7px per glyph
	width := fixed.I(70)

	tests := []struct {
		in   string
		want []string
	}{
		{"hello", []string{"hello"}},
		{"hello world foo", []string{"hello", "world foo"}},
		{"  spaced   out  ", []string{"spaced out"}},
		{strings.Repeat("a", 25), []string{strings.Repeat("a", 10), strings.Repeat("a", 10), strings.Repeat("a", 5)}},
		{"hi " + strings.Repeat("z", 12), []string{"hi", strings.Repeat("z", 10), "zz"}},
		{"", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, wrap(face, tt.in, width), "wrap(%q)", tt.in)
	}
}

func TestHexColor(t *testing.T) {
	assert.Equal(t, "#000000", hexColor(color.Black))
	assert.Equal(t, "#ffffff", hexColor(color.White))
}
