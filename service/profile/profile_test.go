package profile

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Xushengqwer/keenmind_auth/metrics"
	"github.com/Xushengqwer/keenmind_auth/models/dto"
	"github.com/Xushengqwer/keenmind_auth/models/entities"
	"github.com/Xushengqwer/keenmind_auth/models/enums"
	"github.com/Xushengqwer/keenmind_auth/repository/rdb"
	"github.com/Xushengqwer/keenmind_auth/service/adapter"
	"github.com/Xushengqwer/keenmind_auth/testkit"
)

type fixture struct {
	db      *gorm.DB
	adapter adapter.Adapter
	svc     UserProfileService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testkit.NewDB(t)
	logger := testkit.NewLogger(t)
	userRepo := rdb.NewUserRepository(db)
	accountRepo := rdb.NewAccountRepository(db)
	ad := adapter.NewAdapter(db, userRepo, accountRepo, rdb.NewSessionRepository(db),
		rdb.NewVerificationTokenRepository(db), nil, metrics.Nop{}, logger, time.Minute)
	return &fixture{
		db:      db,
		adapter: ad,
		svc:     NewUserProfileService(db, userRepo, accountRepo, ad, logger),
	}
}

func (f *fixture) userWithAccount(t *testing.T, email, provider, accountID string) *dto.AdapterUser {
	t.Helper()
	ctx := context.Background()
	u, err := f.adapter.CreateUser(ctx, dto.AdapterUser{Email: testkit.StrPtr(email), Name: testkit.StrPtr("Ada")})
	require.NoError(t, err)
	require.NoError(t, f.adapter.LinkAccount(ctx, dto.AdapterAccount{
		UserID: u.ID, Type: enums.AccountTypeOAuth, Provider: provider, ProviderAccountID: accountID,
	}))
	return u
}

func TestGetProfile(t *testing.T) {
	f := newFixture(t)
	u := f.userWithAccount(t, "ada@example.com", "github", "583231")

	p, err := f.svc.GetProfile(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", p.Nickname)
	require.Len(t, p.Accounts, 1)
	assert.Equal(t, "github", p.Accounts[0].Provider)
	assert.Equal(t, "583231", p.Accounts[0].ProviderAccountID)

	_, err = f.svc.GetProfile(context.Background(), u.ID+100)
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestUnlinkAccountChecksOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.userWithAccount(t, "owner@example.com", "github", "1")
	other := f.userWithAccount(t, "other@example.com", "wechat", "o-2")

	assert.ErrorIs(t, f.svc.UnlinkAccount(ctx, other.ID, "github", "1"), ErrAccountNotOwned)
	var count int64
	require.NoError(t, f.db.Model(&entities.Account{}).Where("user_id = ?", owner.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count, "他人的解绑请求不能生效")

	assert.ErrorIs(t, f.svc.UnlinkAccount(ctx, owner.ID, "github", "missing"), ErrAccountNotOwned)

	require.NoError(t, f.svc.UnlinkAccount(ctx, owner.ID, "github", "1"))
	require.NoError(t, f.db.Model(&entities.Account{}).Where("user_id = ?", owner.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestDeleteOwnAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.userWithAccount(t, "bye@example.com", "github", "9")
	_, err := f.adapter.CreateSession(ctx, dto.AdapterSession{SessionToken: "s-1", UserID: u.ID, Expires: time.Now().Add(time.Hour)})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteOwnAccount(ctx, u.ID))

	got, err := f.adapter.GetSessionAndUser(ctx, "s-1")
	require.NoError(t, err)
	assert.Nil(t, got)
	gone, err := f.adapter.GetUserByAccount(ctx, "github", "9")
	require.NoError(t, err)
	assert.Nil(t, gone)

	var user entities.User
	require.NoError(t, f.db.Unscoped().First(&user, "id = ?", u.ID).Error)
	assert.True(t, user.DeletedAt.Valid)
	assert.Equal(t, enums.UserStatusInactive, user.Status)
}
