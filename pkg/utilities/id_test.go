package utilities

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDiscordID(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"snowflake", "80351110224678912", "80351110224678912", false},
		{"empty", "", "", true},
		{"letters", "abc", "", true},
		{"negative", "-5", "", true},
		{"zero", "0", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDiscordID(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDiscordID)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewToken(t *testing.T) {
	a, b := NewToken(), NewToken()
	assert.NotEqual(t, a, b)
	_, err := uuid.Parse(a)
	assert.NoError(t, err)
}

func TestNewKSUID(t *testing.T) {
	assert.Len(t, NewKSUID(), 27)
}
