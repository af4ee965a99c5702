package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"blogapi/app/middleware"
	"blogapi/app/models"
	"blogapi/app/repositories"

	"go.uber.org/zap"
)

// responder carries the response helpers shared by the controllers.
type responder struct {
	logger *zap.Logger
}

func (rs responder) sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		rs.logger.Warn("Failed to write response", zap.Error(err))
	}
}

// sendError maps err to a status and body. Validation failures render as
// {field: [messages]}, or under an "errors" key when wrapErrors is set.
func (rs responder) sendError(w http.ResponseWriter, r *http.Request, err error, wrapErrors bool) {
	var verrs models.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		if wrapErrors {
			rs.sendJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{"errors": verrs})
			return
		}
		rs.sendJSON(w, http.StatusUnprocessableEntity, verrs)

	case errors.Is(err, repositories.ErrNotFound):
		rs.sendJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})

	default:
		rs.logger.Error("Request failed",
			zap.Error(err),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.RequestID(r.Context())),
		)
		rs.sendJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}
