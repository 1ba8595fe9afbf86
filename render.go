package remodelpress

import (
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/remodelpress/bottrack"
)

// Render writes a templ component as an HTTP 200 HTML response.
func Render(c echo.Context, cmp templ.Component) error {
	return RenderStatus(c, http.StatusOK, cmp)
}

// RenderStatus writes a templ component with a specific HTTP status code.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}

// renderPage publishes the page title for the bot tracker and renders cmp.
func renderPage(c echo.Context, meta PageMeta, cmp templ.Component) error {
	c.Set(bottrack.TitleKey, meta.Title)
	return Render(c, cmp)
}

func (a *App) reader(c echo.Context) Reader {
	return Reader{
		CSRFToken:         CsrfToken(c),
		Registered:        IsRegistered(c),
		NewsletterEnabled: a.newsletter.Enabled(),
	}
}
