package handler

import (
	"go.uber.org/zap"

	"github.com/systemhub/member-api/internal/service"
)

// TokenVerifier resolves a bearer token to the system it was issued for.
type TokenVerifier interface {
	Authenticate(token string) (int, error)
}

type Handler struct {
	systemService service.SystemService
	memberService service.MemberService
	tokens        TokenVerifier
	log           *zap.Logger
}

func NewHandler(
	systemService service.SystemService,
	memberService service.MemberService,
	tokens TokenVerifier,
	log *zap.Logger,
) *Handler {
	return &Handler{
		systemService: systemService,
		memberService: memberService,
		tokens:        tokens,
		log:           log,
	}
}
