package token

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Xushengqwer/keenmind_auth/dependencies"
	"github.com/Xushengqwer/keenmind_auth/models/dto"
	"github.com/Xushengqwer/keenmind_auth/models/ids"
	"github.com/Xushengqwer/keenmind_auth/repository/redis"
	"github.com/Xushengqwer/keenmind_auth/testkit"
)

func newService(t *testing.T, maxAge time.Duration) AuthTokenService {
	t.Helper()
	_, client := testkit.NewRedis(t)
	ju, err := dependencies.NewJWTUtility("test-secret", "keenmind_auth", maxAge)
	require.NoError(t, err)
	return NewAuthTokenService(redis.NewTokenBlacklistRepo(client), ju, testkit.NewLogger(t))
}

func TestIssueResolveRevoke(t *testing.T) {
	svc := newService(t, 14*24*time.Hour)
	ctx := context.Background()
	user := &dto.AdapterUser{ID: ids.ID(487878605611), Email: testkit.StrPtr("ada@example.com"), Name: testkit.StrPtr("Ada")}

	signed, claims, err := svc.Issue(ctx, user)
	require.NoError(t, err)
	assert.NotEmpty(t, claims.ID)

	resolved, err := svc.Resolve(ctx, signed)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.UserID)

	assert.Equal(t, "ada@example.com", resolved.Email)
	assert.Equal(t, "Ada", resolved.Name)
	assert.Empty(t, resolved.Picture)

	require.NoError(t, svc.Revoke(ctx, signed))
	_, err = svc.Resolve(ctx, signed)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	// 其它令牌不受影响
	other, _, err := svc.Issue(ctx, user)
	require.NoError(t, err)
	_, err = svc.Resolve(ctx, other)
	assert.NoError(t, err)
}

func TestResolveErrors(t *testing.T) {
	svc := newService(t, time.Hour)
	ctx := context.Background()

	_, err := svc.Resolve(ctx, "")
	assert.ErrorIs(t, err, ErrTokenMissing)

	_, err = svc.Resolve(ctx, "not-a-jwt")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	expiredSvc := newService(t, -time.Minute)
	expired, _, err := expiredSvc.Issue(ctx, &dto.AdapterUser{ID: 1})
	require.NoError(t, err)
	_, err = svc.Resolve(ctx, expired)
	assert.ErrorIs(t, err, ErrTokenExpired)

	// 过期或无法解析的令牌吊销时直接成功
	assert.NoError(t, svc.Revoke(ctx, expired))
	assert.NoError(t, svc.Revoke(ctx, "garbage"))
	assert.NoError(t, svc.Revoke(ctx, ""))
}
