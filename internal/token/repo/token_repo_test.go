package repo

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovaphlow/pitchfork/service-voidsight/internal/token/entity"
)

func newMock(t *testing.T) (*TokenRepo, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewTokenRepo(sqlx.NewDb(db, "postgres")), mock
}

func TestReplaceDeletesThenInserts(t *testing.T) {
	r, mock := newMock(t)
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM user_tokens WHERE discord_id = $1`)).
		WithArgs("7").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO user_tokens (token_hash, discord_id, created_at)`)).
		WithArgs("hash", "7", now).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := r.Replace(context.Background(), entity.AccessToken{TokenHash: "hash", DiscordID: "7", CreatedAt: now})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceRollsBackOnInsertFailure(t *testing.T) {
	r, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM user_tokens`).WithArgs("7").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO user_tokens`).WillReturnError(errors.New("duplicate"))
	mock.ExpectRollback()

	err := r.Replace(context.Background(), entity.AccessToken{TokenHash: "hash", DiscordID: "7", CreatedAt: time.Now()})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGet(t *testing.T) {
	r, mock := newMock(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT token_hash, discord_id, created_at FROM user_tokens WHERE token_hash = $1`)).
		WithArgs("hash").
		WillReturnRows(sqlmock.NewRows([]string{"token_hash", "discord_id", "created_at"}).AddRow("hash", "7", now))

	row, err := r.Get(context.Background(), "hash")
	require.NoError(t, err)
	assert.Equal(t, "7", row.DiscordID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
