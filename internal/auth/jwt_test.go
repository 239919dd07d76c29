package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func TestGenerateAndParse(t *testing.T) {
	t.Parallel()
	actor := uuid.NewString()

	tok, err := GenerateToken(actor, secret, time.Hour)
	require.NoError(t, err)

	got, err := ActorFromToken(tok, secret)
	require.NoError(t, err)
	assert.Equal(t, actor, got)
}

func TestGenerateToken_RejectsNonUUIDActor(t *testing.T) {
	t.Parallel()
	_, err := GenerateToken("gate-7", secret, time.Hour)
	assert.Error(t, err)
}

func TestActorFromToken_Expired(t *testing.T) {
	t.Parallel()
	tok, err := GenerateToken(uuid.NewString(), secret, -time.Minute)
	require.NoError(t, err)

	_, err = ActorFromToken(tok, secret)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestActorFromToken_Invalid(t *testing.T) {
	t.Parallel()
	good, err := GenerateToken(uuid.NewString(), secret, time.Hour)
	require.NoError(t, err)

	nonUUID, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "gate-7",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(secret)
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject: uuid.NewString(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		key   []byte
	}{
		{"garbage", "not-a-jwt", secret},
		{"wrong secret", good, []byte("other")},
		{"subject is not a uuid", nonUUID, secret},
		{"none algorithm", unsigned, secret},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ActorFromToken(tt.token, tt.key)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestActorContext(t *testing.T) {
	t.Parallel()
	_, ok := ActorFrom(context.Background())
	assert.False(t, ok)

	ctx := WithActor(context.Background(), "a")
	id, ok := ActorFrom(ctx)
	assert.True(t, ok)
	assert.Equal(t, "a", id)
}
