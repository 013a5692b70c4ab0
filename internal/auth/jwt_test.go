package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenRoundtrip(t *testing.T) {
	req := require.New(t)

	tok, err := NewToken("secret", 42, 60)
	req.NoError(err)

	claims, err := ParseToken("secret", tok)
	req.NoError(err)
	req.Equal(int64(42), claims.UserID)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	req := require.New(t)

	tok, err := NewToken("secret", 42, 60)
	req.NoError(err)

	_, err = ParseToken("other", tok)
	req.Error(err)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	req := require.New(t)

	tok, err := NewToken("secret", 42, -1)
	req.NoError(err)

	_, err = ParseToken("secret", tok)
	req.Error(err)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	_, err := ParseToken("secret", "not-a-token")
	require.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	req := require.New(t)

	hash, err := HashPassword("hunter22")
	req.NoError(err)
	req.NotEqual("hunter22", hash)

	req.NoError(CheckPassword(hash, "hunter22"))
	req.Error(CheckPassword(hash, "wrong"))
}
