// Copyright (c) 2026 Solara. All rights reserved.
// Author: dev@solara.app

package secevent

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/solara-app/solara/internal/platform/request"
	"github.com/solara-app/solara/internal/platform/respond"
	"github.com/solara-app/solara/internal/platform/validate"
)

// defaultListLimit bounds unqualified event listings.
const defaultListLimit = 100

// Handler exposes the read-only admin surface over the security event log.
type Handler struct {
	log *Log
}

// NewHandler constructs a new [Handler] around the process-wide log.
func NewHandler(log *Log) *Handler {
	return &Handler{log: log}
}

// Routes returns a [chi.Router] with the security event endpoints.
//
// Both routes are mounted behind admin-role middleware by the server.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Get("/events", handler.listRecent)
	router.Get("/events/user/{id}", handler.listByUser)
	return router
}

/*
GET /api/security/events?limit=N

Response:
  - 200: []Entry, newest-last
  - 400: invalid limit
*/
func (handler *Handler) listRecent(writer http.ResponseWriter, request *http.Request) {
	limit, err := parseLimit(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, handler.log.Recent(limit))
}

/*
GET /api/security/events/user/{id}?limit=N

Response:
  - 200: []Entry for the user, newest-last
*/
func (handler *Handler) listByUser(writer http.ResponseWriter, request *http.Request) {
	limit, err := parseLimit(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	userID := requestutil.Param(request, "id")
	respond.OK(writer, handler.log.ByUser(userID, limit))
}

// parseLimit reads the optional ?limit query parameter.
func parseLimit(request *http.Request) (int, error) {
	raw := request.URL.Query().Get("limit")
	if raw == "" {
		return defaultListLimit, nil
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return 0, validate.RequiredError("limit", "Must be a positive integer")
	}
	return limit, nil
}
