// Copyright (c) 2026 Solara. All rights reserved.
// Author: dev@solara.app

/*
Package pages serves the application's HTML shell for browser navigation.

Each page route renders a minimal server-side shell; the route guard
middleware decides, before these handlers run, whether the visitor may see
the page at all (redirecting between /login and /dashboard as needed).
*/
package pages

import (
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/solara-app/solara/internal/platform/constants"
	"github.com/solara-app/solara/internal/platform/ctxutil"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Title}} · Solara</title>
</head>
<body>
  <div id="root" data-page="{{.Page}}"></div>
  <script src="/assets/app.js" defer></script>
</body>
</html>
`))

type pageData struct {
	Title string
	Page  string
}

// Handler serves the guarded page routes.
type Handler struct{}

// NewHandler constructs the page [Handler].
func NewHandler() *Handler {
	return &Handler{}
}

// Routes returns a [chi.Router] with every navigable page registered.
//
// The guard middleware must wrap this router; handlers here assume the
// visitor has already been cleared for the route class.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get(constants.PageLogin, handler.render("Sign in", "login"))
	router.Get(constants.PageSignup, handler.render("Create account", "signup"))
	router.Get(constants.PageResetPassword, handler.render("Reset password", "reset-password"))
	router.Get(constants.PageEmailVerification, handler.render("Verify email", "email-verification"))
	router.Get(constants.PageDashboard, handler.render("Dashboard", "dashboard"))

	return router
}

// render returns a handler that writes the HTML shell for one page.
func (handler *Handler) render(title, page string) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Content-Type", "text/html; charset=utf-8")

		if err := pageTemplate.Execute(writer, pageData{Title: title, Page: page}); err != nil {
			logger := ctxutil.GetLogger(request.Context())
			logger.ErrorContext(request.Context(), "page_render_failed",
				slog.String("page", page),
				slog.Any("error", err),
			)
		}
	}
}
