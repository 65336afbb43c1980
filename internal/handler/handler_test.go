package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/systemhub/member-api/internal/auth"
	"github.com/systemhub/member-api/internal/cache"
	"github.com/systemhub/member-api/internal/domain"
	"github.com/systemhub/member-api/internal/repository/memory"
	"github.com/systemhub/member-api/internal/service"
)

const testSecret = "test-secret"

type testEnv struct {
	router http.Handler
	store  *memory.Store
	tokens *auth.Authenticator
	owner  *domain.System
	other  *domain.System
}

func setupTestEnv(t *testing.T, maxMembers int) *testEnv {
	t.Helper()

	store := memory.NewStore()
	description := "a system"
	owner, err := store.AddSystem(domain.System{Description: &description, DescriptionPrivacy: domain.PrivacyPrivate}, 1001)
	require.NoError(t, err)
	other, err := store.AddSystem(domain.System{}, 2002)
	require.NoError(t, err)

	tokens := auth.NewAuthenticator(testSecret)
	h := NewHandler(
		service.NewSystemService(store, cache.Noop{}, zap.NewNop()),
		service.NewMemberService(store, store, service.NewLimitEnforcer(maxMembers), zap.NewNop()),
		tokens,
		zap.NewNop(),
	)

	return &testEnv{router: newTestRouter(h), store: store, tokens: tokens, owner: owner, other: other}
}

func newTestRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(h.Authenticate)
	r.Get("/a/{aid}", h.GetSystemByAccount)
	r.Get("/m/{hid}", h.GetMember)
	r.Group(func(r chi.Router) {
		r.Use(h.RequireSystem)
		r.Post("/m", h.CreateMember)
		r.Patch("/m/{hid}", h.UpdateMember)
		r.Delete("/m/{hid}", h.DeleteMember)
	})
	return r
}

func (e *testEnv) token(t *testing.T, systemID int) string {
	t.Helper()
	token, err := e.tokens.Issue(systemID, time.Hour)
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(t *testing.T, method, target, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorDetail {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp.Error
}

func decodeMember(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestHandler_CreateMember(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		env := setupTestEnv(t, 5)

		rec := env.do(t, http.MethodPost, "/m", `{"name": "Alice", "color": "#ABCDEF", "birthday": "1999-05-04"}`, env.token(t, env.owner.ID))

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		body := decodeMember(t, rec)
		assert.Equal(t, "Alice", body["name"])
		assert.Equal(t, "abcdef", body["color"])
		assert.Equal(t, "1999-05-04", body["birthday"])
		assert.Equal(t, "public", body["visibility"])
		assert.True(t, domain.IsValidHID(body["id"].(string)))
	})

	t.Run("anonymous", func(t *testing.T) {
		env := setupTestEnv(t, 5)

		rec := env.do(t, http.MethodPost, "/m", `{"name": "Alice"}`, "")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, domain.CodeUnauthenticated, decodeError(t, rec).Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		env := setupTestEnv(t, 5)

		rec := env.do(t, http.MethodPost, "/m", `{"name": "Alice"}`, "not-a-jwt")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, domain.CodeUnauthenticated, decodeError(t, rec).Code)
	})

	t.Run("missing name", func(t *testing.T) {
		env := setupTestEnv(t, 5)

		rec := env.do(t, http.MethodPost, "/m", `{"pronouns": "they/them"}`, env.token(t, env.owner.ID))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		detail := decodeError(t, rec)
		assert.Equal(t, domain.CodeMissingName, detail.Code)
		assert.Equal(t, "Member name must be specified.", detail.Message)
	})

	t.Run("invalid field", func(t *testing.T) {
		env := setupTestEnv(t, 5)

		rec := env.do(t, http.MethodPost, "/m", `{"name": "Alice", "avatar_url": "not a url"}`, env.token(t, env.owner.ID))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		detail := decodeError(t, rec)
		assert.Equal(t, domain.CodeValidation, detail.Code)
		assert.Equal(t, "avatar_url", detail.Field)
	})

	t.Run("limit reached", func(t *testing.T) {
		env := setupTestEnv(t, 2)
		token := env.token(t, env.owner.ID)
		for i := 0; i < 2; i++ {
			require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/m", `{"name": "m"}`, token).Code)
		}

		rec := env.do(t, http.MethodPost, "/m", `{"name": "m"}`, token)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		detail := decodeError(t, rec)
		assert.Equal(t, domain.CodeMemberLimit, detail.Code)
		assert.Equal(t, "member limit reached (2/2)", detail.Message)
		require.NotNil(t, detail.Current)
		require.NotNil(t, detail.Max)
		assert.Equal(t, 2, *detail.Current)
		assert.Equal(t, 2, *detail.Max)
	})
}

func TestHandler_MalformedAuthorizationHeaderIsRejected(t *testing.T) {
	env := setupTestEnv(t, 5)

	for _, header := range []string{"Bearer a b", "Basic dXNlcjpwYXNz"} {
		req := httptest.NewRequest(http.MethodGet, "/a/1001", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, header)
		assert.Equal(t, domain.CodeUnauthenticated, decodeError(t, rec).Code, header)
	}
}

func TestHandler_GetMember(t *testing.T) {
	env := setupTestEnv(t, 5)
	ownerToken := env.token(t, env.owner.ID)

	rec := env.do(t, http.MethodPost, "/m", `{
		"name": "Alice",
		"description": "hidden",
		"description_privacy": "private",
		"pronouns": "she/her"
	}`, ownerToken)
	require.Equal(t, http.StatusCreated, rec.Code)
	hid := decodeMember(t, rec)["id"].(string)

	t.Run("owner sees everything", func(t *testing.T) {
		body := decodeMember(t, env.do(t, http.MethodGet, "/m/"+hid, "", ownerToken))
		assert.Equal(t, "hidden", body["description"])
		assert.Equal(t, "private", body["description_privacy"])
	})

	t.Run("public view is filtered", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/m/"+hid, "", "")
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeMember(t, rec)
		assert.Nil(t, body["description"])
		assert.Equal(t, "she/her", body["pronouns"])
		assert.NotContains(t, body, "description_privacy")
	})

	t.Run("private member hides optional fields", func(t *testing.T) {
		rec := env.do(t, http.MethodPatch, "/m/"+hid, `{"visibility": "private"}`, ownerToken)
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeMember(t, env.do(t, http.MethodGet, "/m/"+hid, "", env.token(t, env.other.ID)))
		assert.Equal(t, "Alice", body["name"])
		assert.Nil(t, body["pronouns"])
		assert.Nil(t, body["proxy_tags"])
	})

	t.Run("hid is case-insensitive", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/m/"+strings.ToUpper(hid), "", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unknown and malformed ids are not found", func(t *testing.T) {
		for _, target := range []string{"/m/zzzzz", "/m/abc", "/m/12345"} {
			rec := env.do(t, http.MethodGet, target, "", "")
			assert.Equal(t, http.StatusNotFound, rec.Code, target)
			assert.Equal(t, "Member not found.", decodeError(t, rec).Message)
		}
	})
}

func TestHandler_UpdateMember(t *testing.T) {
	env := setupTestEnv(t, 5)
	ownerToken := env.token(t, env.owner.ID)

	rec := env.do(t, http.MethodPost, "/m", `{"name": "Alice"}`, ownerToken)
	require.Equal(t, http.StatusCreated, rec.Code)
	hid := decodeMember(t, rec)["id"].(string)

	t.Run("non-owner", func(t *testing.T) {
		rec := env.do(t, http.MethodPatch, "/m/"+hid, `{"name": "Mallory"}`, env.token(t, env.other.ID))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		detail := decodeError(t, rec)
		assert.Equal(t, domain.CodeNotOwner, detail.Code)
		assert.Equal(t, "Member '"+hid+"' is not part of your system.", detail.Message)

		body := decodeMember(t, env.do(t, http.MethodGet, "/m/"+hid, "", ""))
		assert.Equal(t, "Alice", body["name"])
	})

	t.Run("null name", func(t *testing.T) {
		rec := env.do(t, http.MethodPatch, "/m/"+hid, `{"name": null}`, ownerToken)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		detail := decodeError(t, rec)
		assert.Equal(t, domain.CodeValidation, detail.Code)
		assert.Equal(t, "name", detail.Field)
	})

	t.Run("owner", func(t *testing.T) {
		rec := env.do(t, http.MethodPatch, "/m/"+hid, `{"proxy_tags": [{"prefix": "a:"}], "keep_proxy": true}`, ownerToken)

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeMember(t, rec)
		assert.Equal(t, true, body["keep_proxy"])
		assert.Equal(t, []any{map[string]any{"prefix": "a:", "suffix": nil}}, body["proxy_tags"])
	})
}

func TestHandler_DeleteMember_RespondsNoContent(t *testing.T) {
	env := setupTestEnv(t, 5)
	ownerToken := env.token(t, env.owner.ID)

	rec := env.do(t, http.MethodPost, "/m", `{"name": "Alice"}`, ownerToken)
	require.Equal(t, http.StatusCreated, rec.Code)
	hid := decodeMember(t, rec)["id"].(string)

	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodDelete, "/m/"+hid, "", env.token(t, env.other.ID)).Code)

	rec = env.do(t, http.MethodDelete, "/m/"+hid, "", ownerToken)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/m/"+hid, "", "").Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, "/m/"+hid, "", ownerToken).Code)
}

func TestHandler_GetSystemByAccount(t *testing.T) {
	env := setupTestEnv(t, 5)

	t.Run("public", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/a/1001", "", "")

		require.Equal(t, http.StatusOK, rec.Code)
		var body SystemResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, env.owner.HID, body.ID)
		assert.Nil(t, body.Description)
		assert.Nil(t, body.DescriptionPrivacy)
	})

	t.Run("owner", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/a/1001", "", env.token(t, env.owner.ID))

		require.Equal(t, http.StatusOK, rec.Code)
		var body SystemResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		require.NotNil(t, body.Description)
		assert.Equal(t, "a system", *body.Description)
		assert.Equal(t, "private", *body.DescriptionPrivacy)
	})

	t.Run("unknown account", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/a/31337", "", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Account not found.", decodeError(t, rec).Message)
	})

	t.Run("malformed account id", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/a/not-a-number", "", "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, domain.CodeBadRequest, decodeError(t, rec).Code)
	})
}

type failingSystemService struct{}

func (failingSystemService) GetByAccount(context.Context, uint64) (*domain.System, error) {
	return nil, errors.New("connection refused")
}

func TestHandler_InternalErrorIsMasked(t *testing.T) {
	h := NewHandler(failingSystemService{}, nil, auth.NewAuthenticator(testSecret), zap.NewNop())

	rec := httptest.NewRecorder()
	newTestRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/a/1", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	detail := decodeError(t, rec)
	assert.Equal(t, "INTERNAL_ERROR", detail.Code)
	assert.Equal(t, "internal server error", detail.Message)
}
