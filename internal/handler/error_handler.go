package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/systemhub/member-api/internal/domain"
)

const codeInternal = "INTERNAL_ERROR"

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var limitErr *domain.LimitError
	if errors.As(err, &limitErr) {
		current, limit := limitErr.Current, limitErr.Max
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: ErrorDetail{
				Code:    domain.CodeMemberLimit,
				Message: limitErr.Error(),
				Current: &current,
				Max:     &limit,
			},
		})
		return
	}

	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		writeJSON(w, getStatusCode(domainErr.Code), ErrorResponse{
			Error: ErrorDetail{
				Code:    domainErr.Code,
				Message: domainErr.Message,
				Field:   domainErr.Field,
			},
		})
		return
	}

	h.log.Error("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error: ErrorDetail{
			Code:    codeInternal,
			Message: "internal server error",
		},
	})
}

func getStatusCode(errorCode string) int {
	switch errorCode {
	case domain.CodeMissingName, domain.CodeValidation, domain.CodeMemberLimit, domain.CodeBadRequest:
		return http.StatusBadRequest
	case domain.CodeNotOwner, domain.CodeUnauthenticated:
		return http.StatusUnauthorized
	case domain.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
