package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/systemhub/member-api/internal/domain"
)

const maxPayloadBytes = 64 << 10

func (h *Handler) GetMember(w http.ResponseWriter, r *http.Request) {
	hid, ok := h.memberHID(w, r)
	if !ok {
		return
	}

	member, err := h.memberService.GetMember(r.Context(), hid)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	lookup := domain.ContextFor(callerSystemID(r.Context()), member.SystemID)
	writeJSON(w, http.StatusOK, domainMemberToHTTP(member, lookup))
}

func (h *Handler) CreateMember(w http.ResponseWriter, r *http.Request) {
	payload, ok := h.readPayload(w, r)
	if !ok {
		return
	}

	member, err := h.memberService.CreateMember(r.Context(), callerSystemID(r.Context()), payload)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, domainMemberToHTTP(member, domain.LookupOwner))
}

func (h *Handler) UpdateMember(w http.ResponseWriter, r *http.Request) {
	hid, ok := h.memberHID(w, r)
	if !ok {
		return
	}
	payload, ok := h.readPayload(w, r)
	if !ok {
		return
	}

	member, err := h.memberService.UpdateMember(r.Context(), callerSystemID(r.Context()), hid, payload)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, domainMemberToHTTP(member, domain.LookupOwner))
}

func (h *Handler) DeleteMember(w http.ResponseWriter, r *http.Request) {
	hid, ok := h.memberHID(w, r)
	if !ok {
		return
	}

	if err := h.memberService.DeleteMember(r.Context(), callerSystemID(r.Context()), hid); err != nil {
		h.handleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// memberHID normalizes the {hid} path parameter. Anything that cannot be a
// member id is reported as not found.
func (h *Handler) memberHID(w http.ResponseWriter, r *http.Request) (string, bool) {
	hid := strings.ToLower(strings.TrimSpace(chi.URLParam(r, "hid")))
	if !domain.IsValidHID(hid) {
		h.handleError(w, r, domain.NewNotFoundError("Member not found."))
		return "", false
	}
	return hid, true
}

func (h *Handler) readPayload(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPayloadBytes))
	if err != nil {
		h.handleError(w, r, domain.NewBadRequestError("Could not read request body."))
		return nil, false
	}
	return payload, true
}
