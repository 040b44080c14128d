package controllers

import (
	"net/http"
	"strconv"

	"github.com/elchascon/botilleria/pkg/middleware"
	"github.com/go-chi/chi/v5"
)

// pathID parses a positive integer URL parameter.
func pathID(r *http.Request, name string) (uint, bool) {
	n, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

// actor returns the authenticated user's id, or nil.
func actor(r *http.Request) *uint {
	id, ok := middleware.UserIDFromCtx(r)
	if !ok {
		return nil
	}
	return &id
}
