package handler

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/systemhub/member-api/internal/auth"
	"github.com/systemhub/member-api/internal/domain"
)

type callerKey struct{}

func withCallerSystem(ctx context.Context, systemID int) context.Context {
	return context.WithValue(ctx, callerKey{}, systemID)
}

// callerSystemID returns 0 for anonymous requests.
func callerSystemID(ctx context.Context) int {
	id, _ := ctx.Value(callerKey{}).(int)
	return id
}

// Authenticate resolves the Authorization header when one is sent. Requests
// without it continue anonymously; a bad token is rejected outright.
func (h *Handler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := auth.TokenFromHeader(r.Header.Get("Authorization"))
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		systemID, err := h.tokens.Authenticate(token)
		if err != nil {
			h.log.Debug("rejected token", zap.Error(err))
			h.handleError(w, r, &domain.DomainError{
				Code:    domain.CodeUnauthenticated,
				Message: "Invalid system token.",
			})
			return
		}
		next.ServeHTTP(w, r.WithContext(withCallerSystem(r.Context(), systemID)))
	})
}

func (h *Handler) RequireSystem(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if callerSystemID(r.Context()) == 0 {
			h.handleError(w, r, domain.ErrUnauthenticated)
			return
		}
		next.ServeHTTP(w, r)
	})
}
