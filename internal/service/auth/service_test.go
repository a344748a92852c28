package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"school-portal/internal/config"
	"school-portal/internal/domain"
)

func newTestService() *service {
	return NewService(&config.Config{JWTSecret: "test-secret", JWTExpiry: time.Hour}).(*service)
}

func TestIssueAndResolve(t *testing.T) {
	svc := newTestService()
	principal := domain.Principal{Role: domain.RoleTeacher, ID: uuid.New()}

	tok, err := svc.IssueToken(principal)
	require.NoError(t, err)
	assert.Equal(t, int64(3600), tok.ExpiresIn)

	got, err := svc.Resolve(tok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, principal, *got)
}

func TestResolve_Rejects(t *testing.T) {
	svc := newTestService()
	tok, err := svc.IssueToken(domain.Principal{Role: domain.RoleStudent, ID: uuid.New()})
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		defer func() { svc.now = time.Now }()

		_, err := svc.Resolve(tok.AccessToken)
		assert.True(t, domain.IsKind(err, domain.KindUnauthorized))
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewService(&config.Config{JWTSecret: "other", JWTExpiry: time.Hour})
		_, err := other.Resolve(tok.AccessToken)
		assert.True(t, domain.IsKind(err, domain.KindUnauthorized))
	})

	t.Run("unknown role", func(t *testing.T) {
		claims := &Claims{Role: "Parent", RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}}
		forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = svc.Resolve(forged)
		assert.True(t, domain.IsKind(err, domain.KindUnauthorized))
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.Resolve("not-a-token")
		assert.True(t, domain.IsKind(err, domain.KindUnauthorized))
	})
}

func TestPasswords(t *testing.T) {
	svc := newTestService()

	hash, err := svc.HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.True(t, svc.CheckPassword(hash, "s3cret-pass"))
	assert.False(t, svc.CheckPassword(hash, "wrong"))
}
