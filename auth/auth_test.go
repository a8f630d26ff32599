package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHashPassword_VerifiesAndSalts(t *testing.T) {
	req := require.New(t)

	hash, err := HashPassword("Str0ng&Secret#2026")
	req.NoError(err)
	req.True(strings.HasPrefix(hash, "$argon2id$"))

	match, err := ComparePassword("Str0ng&Secret#2026", hash)
	req.NoError(err)
	req.True(match)

	match, err = ComparePassword("Wrong&Password#2026", hash)
	req.NoError(err)
	req.False(match)

	// A fresh salt per hash: same password, different encodings.
	other, err := HashPassword("Str0ng&Secret#2026")
	req.NoError(err)
	req.NotEqual(hash, other)
}

func TestComparePassword_RejectsMalformedHash(t *testing.T) {
	req := require.New(t)

	_, err := ComparePassword("anything", "not-an-encoded-hash")
	req.Error(err)
}

func TestToken_RoundTrip(t *testing.T) {
	req := require.New(t)
	secret := []byte("test-secret")

	token, err := GenerateToken("user-1", "Happy Panda", secret, time.Hour)
	req.NoError(err)

	claims, err := ValidateToken(token, secret)
	req.NoError(err)
	req.Equal("user-1", claims.UserID)
	req.Equal("Happy Panda", claims.DisplayName)
}

func TestToken_RejectsWrongSecretAndExpiry(t *testing.T) {
	req := require.New(t)

	token, err := GenerateToken("user-1", "Happy Panda", []byte("secret-a"), time.Hour)
	req.NoError(err)
	_, err = ValidateToken(token, []byte("secret-b"))
	req.Error(err)

	expired, err := GenerateToken("user-1", "Happy Panda", []byte("secret-a"), -time.Minute)
	req.NoError(err)
	_, err = ValidateToken(expired, []byte("secret-a"))
	req.Error(err)
}

func TestGenerateDisplayName_Shape(t *testing.T) {
	req := require.New(t)

	for range 50 {
		name := GenerateDisplayName()
		parts := strings.Fields(name)
		req.Len(parts, 2)
		req.Equal(strings.ToUpper(parts[0][:1]), parts[0][:1])
		req.Equal(strings.ToUpper(parts[1][:1]), parts[1][:1])
	}
}

func TestValidateRegister(t *testing.T) {
	req := require.New(t)

	req.NoError(ValidateRegister(RegisterRequest{
		Email:    "reader@example.com",
		Password: "Str0ng&Secret#2026",
	}))

	cases := []RegisterRequest{
		{Email: "not-an-email", Password: "Str0ng&Secret#2026"},
		{Email: "reader@example.com", Password: "Short1!"},
		{Email: "reader@example.com", Password: "nouppercase1!aaaa"},
		{Email: "reader@example.com", Password: "NOLOWERCASE1!AAAA"},
		{Email: "reader@example.com", Password: "NoSpecialChar1234"},
	}
	for _, c := range cases {
		req.Error(ValidateRegister(c))
	}
}
