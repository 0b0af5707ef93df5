package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	j := NewJWTer("secret", "noteapp", 0)
	assert.Equal(t, DefaultTTL, j.TTL)

	tok, err := j.Issue("u-1", "admin")
	require.NoError(t, err)

	c, err := j.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", c.UID)
	assert.Equal(t, "admin", c.Role)
	assert.WithinDuration(t, time.Now().Add(DefaultTTL), c.ExpiresAt.Time, 5*time.Second)
}

func TestParseRejectsForeignTokens(t *testing.T) {
	j := NewJWTer("secret", "noteapp", time.Hour)
	tok, err := j.Issue("u-1", "user")
	require.NoError(t, err)

	other := NewJWTer("other-secret", "noteapp", time.Hour)
	_, err = other.Parse(tok)
	assert.Error(t, err)

	wrongIssuer := NewJWTer("secret", "someone-else", time.Hour)
	_, err = wrongIssuer.Parse(tok)
	assert.Error(t, err)

	_, err = j.Parse("not-a-token")
	assert.Error(t, err)
}

func TestParseRejectsExpired(t *testing.T) {
	j := NewJWTer("secret", "noteapp", time.Hour)
	issuedAt := time.Now().Add(-48 * time.Hour)
	j.now = func() time.Time { return issuedAt }
	tok, err := j.Issue("u-1", "user")
	require.NoError(t, err)

	j.now = nil
	_, err = j.Parse(tok)
	assert.Error(t, err)
}

func TestIssueRequiresUID(t *testing.T) {
	_, err := NewJWTer("secret", "noteapp", time.Hour).Issue("", "user")
	assert.Error(t, err)
}
