package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/spendwise/backend/internal/model"
)

type errorBody struct {
	Error  model.ErrorKind `json:"error"`
	Detail string          `json:"detail"`
}

func statusFor(err error) int {
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	switch model.KindOf(err) {
	case model.ErrMalformedInput:
		return http.StatusBadRequest
	case model.ErrClassification, model.ErrEvaluation, model.ErrGeneration:
		return http.StatusBadGateway
	case model.ErrNotFound:
		return http.StatusNotFound
	case model.ErrUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// writeError answers with the error's kind and message. Causes stay in the logs.
func writeError(w http.ResponseWriter, err error) {
	body := errorBody{Error: model.KindOf(err), Detail: "internal error"}
	var e *model.Error
	if errors.As(err, &e) {
		body.Detail = e.Message
	}
	writeJSON(w, statusFor(err), body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
