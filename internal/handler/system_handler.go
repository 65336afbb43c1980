package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/systemhub/member-api/internal/domain"
)

func (h *Handler) GetSystemByAccount(w http.ResponseWriter, r *http.Request) {
	accountID, err := strconv.ParseUint(chi.URLParam(r, "aid"), 10, 64)
	if err != nil {
		h.handleError(w, r, domain.NewBadRequestError("Invalid account ID."))
		return
	}

	system, err := h.systemService.GetByAccount(r.Context(), accountID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	lookup := domain.ContextFor(callerSystemID(r.Context()), system.ID)
	writeJSON(w, http.StatusOK, domainSystemToHTTP(system, lookup))
}
