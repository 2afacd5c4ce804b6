package apihttp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"mediaarchive/internal/domain"
	"mediaarchive/internal/usecase"
)

type errorEnvelope struct {
	Error errorPayload `json:"error"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeUseCaseError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "title not found")
	case errors.Is(err, domain.ErrPrecondition), errors.Is(err, domain.ErrSeasonPack):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, usecase.ErrInvalidRelease), errors.Is(err, usecase.ErrNoMatch):
		writeError(w, http.StatusUnprocessableEntity, "unprocessable", err.Error())
	case errors.Is(err, usecase.ErrProvider), errors.Is(err, usecase.ErrFileUnavailable):
		writeError(w, http.StatusBadGateway, "upstream_error", err.Error())
	case errors.Is(err, usecase.ErrRepository):
		writeError(w, http.StatusInternalServerError, "repository_error", err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "canceled", "request canceled")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeRepoError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "title not found")
		return
	}
	writeError(w, http.StatusInternalServerError, "repository_error", err.Error())
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorEnvelope{Error: errorPayload{Code: code, Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
