package setting

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-voidsight/internal/identity"
	"github.com/ovaphlow/pitchfork/service-voidsight/internal/setting/entity"
)

func newTestHandler(store *memStore) *Handler {
	return NewHandler(NewService(store, memberRole), zap.NewNop().Sugar())
}

func request(method, body string, c *identity.Caller) *http.Request {
	req := httptest.NewRequest(method, "/config", strings.NewReader(body))
	if c != nil {
		req = req.WithContext(identity.WithCaller(req.Context(), c))
	}
	return req
}

func TestHandlerGet(t *testing.T) {
	store := newMemStore()
	store.states["1"] = &entity.State{Config: entity.DefaultDocument(), Roles: []string{"Member"}}
	h := newTestHandler(store)

	w := httptest.NewRecorder()
	h.Get(w, request(http.MethodGet, "", &identity.Caller{DiscordID: "1", Roles: []string{"Member"}}))

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(1), body["tabFormat"])
	assert.Equal(t, map[string]any{
		"isMember":  true,
		"isPremium": false,
		"roles":     []any{"Member"},
	}, body["_meta"])
}

func TestHandlerGetUnknownUser(t *testing.T) {
	h := newTestHandler(newMemStore())
	w := httptest.NewRecorder()
	h.Get(w, request(http.MethodGet, "", &identity.Caller{DiscordID: "404"}))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandlerRequiresCaller(t *testing.T) {
	h := newTestHandler(newMemStore())
	w := httptest.NewRecorder()
	h.Post(w, request(http.MethodPost, `{"nickDetect":false}`, nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandlerPostRejectsNonObject(t *testing.T) {
	bodies := []string{`["a","b"]`, `"text"`, `42`, `null`, `{"nickDetect":`, ``}
	for _, b := range bodies {
		t.Run(b, func(t *testing.T) {
			store := newMemStore()
			store.states["1"] = &entity.State{Config: entity.Document{"nickDetect": true}}
			h := newTestHandler(store)

			w := httptest.NewRecorder()
			h.Post(w, request(http.MethodPost, b, &identity.Caller{DiscordID: "1"}))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Zero(t, store.saves)
			assert.Equal(t, entity.Document{"nickDetect": true}, store.states["1"].Config)
		})
	}
}

func TestHandlerPostMerges(t *testing.T) {
	store := newMemStore()
	store.states["1"] = &entity.State{Config: entity.DefaultDocument()}
	h := newTestHandler(store)

	w := httptest.NewRecorder()
	h.Post(w, request(http.MethodPost, `{"sniperAlert":{"minStars":500},"friends":["x"]}`, &identity.Caller{DiscordID: "1"}))

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, map[string]any{"minFkdr": float64(5), "minStars": float64(500)}, body["sniperAlert"])
	assert.NotContains(t, body, "friends")
	assert.Equal(t, []any{}, store.states["1"].Config["friends"])
}

func TestHandlerPostStoreFailure(t *testing.T) {
	store := newMemStore()
	store.states["1"] = &entity.State{Config: entity.Document{}}
	store.saveErr = errors.New("boom")
	h := newTestHandler(store)

	w := httptest.NewRecorder()
	h.Post(w, request(http.MethodPost, `{"autoGL":true}`, &identity.Caller{DiscordID: "1"}))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"DB error"}`, w.Body.String())
}
