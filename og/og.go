// Package og renders social preview cards: fixed-size PNG images carrying a
// logo mark, the site name, a post title and the site URL. They are served to
// link-unfurling crawlers through og:image and twitter:image meta tags.
package og

import (
	"errors"
	"unicode/utf8"
)

const (
	// Width and Height are the pixel dimensions of every rendered card.
	Width  = 800
	Height = 400

	// MaxTitleLen is the number of characters of a title kept on the card
	// before it is cut and suffixed with an ellipsis.
	MaxTitleLen = 140

	ellipsis = "..."
)

var (
	// ErrMissingTitle is returned when a card is requested without a title.
	ErrMissingTitle = errors.New("og: no title provided")

	// ErrFontUnavailable wraps failures fetching or parsing the card font.
	ErrFontUnavailable = errors.New("og: font unavailable")

	// ErrRender wraps failures composing or encoding the card image.
	ErrRender = errors.New("og: render failed")
)

// Heading returns title as it is drawn on the card. Titles longer than
// MaxTitleLen characters are cut to MaxTitleLen and end in "...".
func Heading(title string) string {
	if utf8.RuneCountInString(title) <= MaxTitleLen {
		return title
	}
	runes := []rune(title)
	return string(runes[:MaxTitleLen]) + ellipsis
}
