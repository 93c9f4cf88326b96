package user

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-voidsight/internal/identity"
	"github.com/ovaphlow/pitchfork/service-voidsight/internal/user/entity"
)

type memStore struct {
	users     map[string]*entity.User
	createErr error
	onCreate  func()
}

func newMemStore() *memStore { return &memStore{users: map[string]*entity.User{}} }

func (m *memStore) GetByDiscordID(_ context.Context, id string) (*entity.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) Create(_ context.Context, u *entity.User) error {
	if m.onCreate != nil {
		m.onCreate()
	}
	if m.createErr != nil {
		return m.createErr
	}
	cp := *u
	m.users[u.DiscordID] = &cp
	return nil
}

func (m *memStore) UpdateProfile(_ context.Context, id, name string, avatar *string) error {
	if u, ok := m.users[id]; ok {
		u.DiscordName = name
		u.Avatar = avatar
	}
	return nil
}

func (m *memStore) UpdateRoles(_ context.Context, id string, roles []string, at time.Time) (int64, error) {
	u, ok := m.users[id]
	if !ok {
		return 0, nil
	}
	u.Roles = roles
	u.SyncedAt = &at
	return 1, nil
}

func (m *memStore) Roles(_ context.Context, id string) ([]string, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return u.Roles, nil
}

func TestSignInCreatesUserWithDefaults(t *testing.T) {
	store := newMemStore()
	svc := NewUserService(store)

	u, err := svc.SignIn(context.Background(), entity.Profile{DiscordID: "1", Name: "alex", Avatar: "https://cdn/a.png"})
	require.NoError(t, err)
	assert.Equal(t, "alex", u.DiscordName)
	assert.Empty(t, u.Roles)
	assert.False(t, u.Premium)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(store.users["1"].Config, &doc))
	assert.Equal(t, map[string]any{}, doc["tags"])
	assert.Equal(t, []any{}, doc["blacklist"])
	assert.Equal(t, []any{}, doc["friends"])
	assert.Contains(t, doc, "tabFormat")
}

func TestSignInRefreshesProfileOnly(t *testing.T) {
	store := newMemStore()
	store.users["1"] = &entity.User{
		DiscordID:   "1",
		DiscordName: "old",
		Roles:       pq.StringArray{"Member"},
		Premium:     true,
		Config:      json.RawMessage(`{"nickDetect":false}`),
	}
	svc := NewUserService(store)

	u, err := svc.SignIn(context.Background(), entity.Profile{DiscordID: "1", Name: "new"})
	require.NoError(t, err)
	assert.Equal(t, "new", u.DiscordName)
	assert.Nil(t, u.Avatar)

	stored := store.users["1"]
	assert.Equal(t, pq.StringArray{"Member"}, stored.Roles)
	assert.True(t, stored.Premium)
	assert.JSONEq(t, `{"nickDetect":false}`, string(stored.Config))
}

func TestSignInConcurrentFirstLogin(t *testing.T) {
	store := newMemStore()
	store.createErr = &pq.Error{Code: "23505"}
	// the competing insert lands between our lookup and our insert
	store.onCreate = func() {
		store.users["1"] = &entity.User{DiscordID: "1", DiscordName: "racer", Roles: pq.StringArray{}}
	}
	svc := NewUserService(store)

	u, err := svc.SignIn(context.Background(), entity.Profile{DiscordID: "1", Name: "alex"})
	require.NoError(t, err)
	assert.Equal(t, "alex", u.DiscordName)

	store.onCreate = nil
	store.createErr = errors.New("boom")
	_, err = svc.SignIn(context.Background(), entity.Profile{DiscordID: "2"})
	assert.Error(t, err)
}

func TestSignInRequiresID(t *testing.T) {
	_, err := NewUserService(newMemStore()).SignIn(context.Background(), entity.Profile{})
	assert.Error(t, err)
}

func TestRolesAndSync(t *testing.T) {
	store := newMemStore()
	svc := NewUserService(store)

	_, err := svc.Roles(context.Background(), "1")
	assert.ErrorIs(t, err, ErrUserNotFound)

	ok, err := svc.SyncRoles(context.Background(), "1", []string{"Member"})
	require.NoError(t, err)
	assert.False(t, ok, "sync must not create users")
	assert.NotContains(t, store.users, "1")

	store.users["1"] = &entity.User{DiscordID: "1", Roles: pq.StringArray{"Member"}}
	ok, err = svc.SyncRoles(context.Background(), "1", nil)
	require.NoError(t, err)
	assert.True(t, ok)

	roles, err := svc.Roles(context.Background(), "1")
	require.NoError(t, err)
	assert.Empty(t, roles)
	assert.NotNil(t, store.users["1"].SyncedAt)
}

func TestSessionHandler(t *testing.T) {
	store := newMemStore()
	avatar := "https://cdn/a.png"
	store.users["1"] = &entity.User{DiscordID: "1", DiscordName: "alex", Avatar: &avatar, Roles: pq.StringArray{"Member"}, Premium: true}
	h := NewHandler(NewUserService(store), zap.NewNop().Sugar())

	w := httptest.NewRecorder()
	h.Session(w, httptest.NewRequest(http.MethodGet, "/auth/session", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/auth/session", nil)
	req = req.WithContext(identity.WithCaller(req.Context(), &identity.Caller{DiscordID: "1", Avatar: "https://cdn/stale.png", Via: identity.ViaSession}))
	w = httptest.NewRecorder()
	h.Session(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var got SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, SessionResponse{DiscordID: "1", Name: "alex", Image: avatar, Roles: []string{"Member"}, Premium: true}, got)

	store.users["1"].Avatar = nil
	req = httptest.NewRequest(http.MethodGet, "/auth/session", nil)
	req = req.WithContext(identity.WithCaller(req.Context(), &identity.Caller{DiscordID: "1", Avatar: "https://cdn/claim.png"}))
	w = httptest.NewRecorder()
	h.Session(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "https://cdn/claim.png", got.Image)

	req = httptest.NewRequest(http.MethodGet, "/auth/session", nil)
	req = req.WithContext(identity.WithCaller(req.Context(), &identity.Caller{DiscordID: "2"}))
	w = httptest.NewRecorder()
	h.Session(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
