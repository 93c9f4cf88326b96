package utilities

import (
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/segmentio/ksuid"
)

// ErrInvalidDiscordID is returned when a string is not a Discord snowflake.
var ErrInvalidDiscordID = errors.New("invalid discord id")

// NewKSUID generates a new globally unique KSUID string.
func NewKSUID() string {
	return ksuid.New().String()
}

// NewToken returns a random UUIDv4 string suitable for an opaque bearer token.
func NewToken() string {
	return uuid.NewString()
}

// ParseDiscordID validates that s is a positive decimal snowflake as issued by Discord
// and returns it in canonical form.
func ParseDiscordID(s string) (string, error) {
	id, err := snowflake.ParseString(s)
	if err != nil || id.Int64() <= 0 {
		return "", ErrInvalidDiscordID
	}
	return id.String(), nil
}
