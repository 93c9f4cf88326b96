package token

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-voidsight/internal/identity"
	"github.com/ovaphlow/pitchfork/service-voidsight/internal/token/entity"
)

type memStore struct {
	rows       map[string]entity.AccessToken
	replaceErr error
}

func newMemStore() *memStore { return &memStore{rows: map[string]entity.AccessToken{}} }

func (m *memStore) Replace(_ context.Context, t entity.AccessToken) error {
	if m.replaceErr != nil {
		return m.replaceErr
	}
	for h, row := range m.rows {
		if row.DiscordID == t.DiscordID {
			delete(m.rows, h)
		}
	}
	m.rows[t.TokenHash] = t
	return nil
}

func (m *memStore) Get(_ context.Context, hash string) (*entity.AccessToken, error) {
	row, ok := m.rows[hash]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &row, nil
}

func TestGenerateAndResolve(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)

	tok, err := svc.Generate(context.Background(), "7")
	require.NoError(t, err)
	require.NotEmpty(t, tok)
	assert.NotContains(t, store.rows, tok, "plaintext must not be stored")

	owner, err := svc.Resolve(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, "7", owner)
}

func TestSecondTokenInvalidatesFirst(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)

	first, err := svc.Generate(context.Background(), "7")
	require.NoError(t, err)
	second, err := svc.Generate(context.Background(), "7")
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	_, err = svc.Resolve(context.Background(), first)
	assert.ErrorIs(t, err, ErrNotFound)
	owner, err := svc.Resolve(context.Background(), second)
	require.NoError(t, err)
	assert.Equal(t, "7", owner)
	assert.Len(t, store.rows, 1)
}

func TestResolveEmpty(t *testing.T) {
	_, err := NewService(newMemStore()).Resolve(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHashIsStable(t *testing.T) {
	assert.Equal(t, Hash("abc"), Hash("abc"))
	assert.NotEqual(t, Hash("abc"), Hash("abd"))
	assert.Len(t, Hash("abc"), 64)
}

func TestHandlerGenerate(t *testing.T) {
	store := newMemStore()
	h := NewHandler(NewService(store), zap.NewNop().Sugar())

	req := httptest.NewRequest(http.MethodPost, "/token/generate", nil)
	req = req.WithContext(identity.WithCaller(req.Context(), &identity.Caller{DiscordID: "7", Via: identity.ViaSession}))
	w := httptest.NewRecorder()
	h.Generate(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"token"`)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.Len(t, store.rows, 1)
}

func TestHandlerGenerateRejectsBearer(t *testing.T) {
	h := NewHandler(NewService(newMemStore()), zap.NewNop().Sugar())

	req := httptest.NewRequest(http.MethodPost, "/token/generate", nil)
	req = req.WithContext(identity.WithCaller(req.Context(), &identity.Caller{DiscordID: "7", Via: identity.ViaBearer}))
	w := httptest.NewRecorder()
	h.Generate(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandlerGenerateStoreFailure(t *testing.T) {
	store := newMemStore()
	store.replaceErr = errors.New("down")
	h := NewHandler(NewService(store), zap.NewNop().Sugar())

	req := httptest.NewRequest(http.MethodPost, "/token/generate", nil)
	req = req.WithContext(identity.WithCaller(req.Context(), &identity.Caller{DiscordID: "7", Via: identity.ViaSession}))
	w := httptest.NewRecorder()
	h.Generate(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
