// Package handlers exposes the dashboard actions over HTTP. Every handler
// reads the caller session placed in the request context by the auth
// middleware and maps action errors onto the response envelope.
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"org-dashboard-backend/pkg/config"
	"org-dashboard-backend/pkg/middleware"
	"org-dashboard-backend/pkg/models"
	"org-dashboard-backend/pkg/utils"
)

// listPayload is the data of every list response
type listPayload[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

func writeList[T any](w http.ResponseWriter, items []T) {
	if items == nil {
		items = []T{}
	}
	utils.WriteSuccessResponse(w, listPayload[T]{Items: items, Count: len(items)})
}

// decodeBody parses the JSON body into v, answering 400 itself on failure.
// The decoder's message is only echoed outside production.
func decodeBody(cfg *config.Config, w http.ResponseWriter, r *http.Request, v any) bool {
	if err := utils.ParseJSONBody(r, v); err != nil {
		details := ""
		if !cfg.IsProduction() {
			details = err.Error()
		}
		utils.WriteValidationErrorResponse(w, "Invalid request body", details)
		return false
	}
	return true
}

func session(r *http.Request) models.Session {
	return middleware.SessionFrom(r.Context())
}

func idParam(r *http.Request) string {
	return chi.URLParam(r, "id")
}
