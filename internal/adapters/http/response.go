package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/n0madsky/profile-api-assignment/internal/contracts"
	"github.com/n0madsky/profile-api-assignment/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeSuccess(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, contracts.SuccessResponse{Status: "success", Data: data})
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, contracts.SuccessResponse{Status: "success", Message: message})
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeErrorPayload(w, r, status, contracts.ErrorPayload{Code: code, Message: message})
}

func writeErrorPayload(w http.ResponseWriter, r *http.Request, status int, payload contracts.ErrorPayload) {
	payload.RequestID = requestIDFromContext(r.Context())
	writeJSON(w, status, contracts.ErrorResponse{
		Status:    "error",
		Code:      payload.Code,
		Message:   payload.Message,
		RequestID: payload.RequestID,
		Error:     payload,
	})
}

func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, msg := mapDomainError(err)
	payload := contracts.ErrorPayload{Code: code, Message: msg}
	var conflict *domain.ConflictError
	if errors.As(err, &conflict) {
		payload.ConflictingSKUs = conflict.SKUs.Sorted()
	}
	writeErrorPayload(w, r, status, payload)
}
