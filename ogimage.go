package cardpress

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/cardpress/og"
)

const cardPath = "/api/og"

// handleCardImage renders the preview card for ?title=. Both failure kinds
// answer 500 with a fixed plain-text body; the cause only goes to the log.
func (a *App) handleCardImage(c echo.Context) error {
	if a.cardLimiter != nil && !a.cardLimiter.Allow(c.RealIP()) {
		c.Response().Header().Set("Cache-Control", "no-store")
		return c.String(http.StatusTooManyRequests, "Too many requests")
	}

	start := time.Now()
	png, err := a.Cards.Render(c.Request().Context(), c.QueryParam("title"))
	a.metrics.observe(err, time.Since(start))
	if err != nil {
		c.Response().Header().Set("Cache-Control", "no-store")
		if errors.Is(err, og.ErrMissingTitle) {
			return c.String(http.StatusInternalServerError, "No title provided")
		}
		c.Logger().Errorf("card image: %v", err)
		return c.String(http.StatusInternalServerError, "Failed to generate image")
	}
	return c.Blob(http.StatusOK, "image/png", png)
}
