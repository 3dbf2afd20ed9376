package login

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Xushengqwer/keenmind_auth/models/dto"
	"github.com/Xushengqwer/keenmind_auth/models/entities"
	"github.com/Xushengqwer/keenmind_auth/models/enums"
	"github.com/Xushengqwer/keenmind_auth/repository/rdb"
	"github.com/Xushengqwer/keenmind_auth/service/adapter"
	"github.com/Xushengqwer/keenmind_auth/testkit"
)

func newLinking(t *testing.T) (*gorm.DB, LinkingService) {
	t.Helper()
	db := testkit.NewDB(t)
	svc := NewLinkingService(db, rdb.NewUserRepository(db), rdb.NewAccountRepository(db), testkit.NewLogger(t))
	return db, svc
}

func githubInput(pid, email string) SignInInput {
	in := SignInInput{
		Account: dto.AdapterAccount{Type: enums.AccountTypeOAuth, Provider: enums.ProviderGithub, ProviderAccountID: pid},
		Profile: dto.OAuthProfile{ID: pid, Name: testkit.StrPtr("octocat")},
	}
	if email != "" {
		in.Profile.Email = testkit.StrPtr(email)
		in.Profile.EmailVerified = true
	}
	return in
}

func seedUser(t *testing.T, db *gorm.DB, email *string, verified bool) *entities.User {
	t.Helper()
	u := &entities.User{Email: email, Status: enums.UserStatusActive}
	if verified {
		now := time.Now()
		u.EmailVerified = &now
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func countAccounts(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&entities.Account{}).Count(&n).Error)
	return n
}

func TestFirstGithubSignInCreatesUser(t *testing.T) {
	db, svc := newLinking(t)

	user, err := svc.SignIn(context.Background(), githubInput("583231", "octocat@github.com"))
	require.NoError(t, err)
	assert.Equal(t, enums.UserStatusActive, user.Status)
	require.NotNil(t, user.EmailVerified)

	var accounts []entities.Account
	require.NoError(t, db.Find(&accounts).Error)
	require.Len(t, accounts, 1)
	assert.Equal(t, enums.ProviderGithub, accounts[0].Provider)
	assert.Equal(t, user.ID, accounts[0].UserID)

	var stored entities.User
	require.NoError(t, db.First(&stored, "id = ?", user.ID).Error)
	assert.NotNil(t, stored.LastLoginAt)

	// 再次登录返回同一个用户
	again, err := svc.SignIn(context.Background(), githubInput("583231", "octocat@github.com"))
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
	assert.Equal(t, int64(1), countAccounts(t, db))
}

func TestSignInLinksByMatchingEmail(t *testing.T) {
	db, svc := newLinking(t)
	existing := seedUser(t, db, testkit.StrPtr("ada@example.com"), true)

	user, err := svc.SignIn(context.Background(), githubInput("1", "ada@example.com"))
	require.NoError(t, err)
	assert.Equal(t, existing.ID, user.ID)
	assert.Equal(t, int64(1), countAccounts(t, db))
}

func TestLinkToCurrentUserUpgradesPlaceholderEmail(t *testing.T) {
	db, svc := newLinking(t)
	current := seedUser(t, db, testkit.StrPtr("wx_o6_bmjr@unbind.keenmind.me"), false)

	in := githubInput("777", "real@example.com")
	in.Current = adapter.ToAdapterUser(current)
	user, err := svc.SignIn(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, current.ID, user.ID)
	assert.Equal(t, "real@example.com", user.EmailValue())

	var stored entities.User
	require.NoError(t, db.First(&stored, "id = ?", current.ID).Error)
	require.NotNil(t, stored.Email)
	assert.Equal(t, "real@example.com", *stored.Email)
	assert.NotNil(t, stored.EmailVerified)
}

func TestLinkToCurrentUserKeepsVerifiedEmail(t *testing.T) {
	db, svc := newLinking(t)
	current := seedUser(t, db, testkit.StrPtr("ada@example.com"), true)

	in := githubInput("778", "other@example.com")
	in.Current = adapter.ToAdapterUser(current)
	_, err := svc.SignIn(context.Background(), in)
	require.NoError(t, err)

	var stored entities.User
	require.NoError(t, db.First(&stored, "id = ?", current.ID).Error)
	assert.Equal(t, "ada@example.com", *stored.Email)
}

func TestLinkSameIdentityTwiceIsNoop(t *testing.T) {
	db, svc := newLinking(t)
	current := seedUser(t, db, testkit.StrPtr("ada@example.com"), true)

	in := githubInput("42", "")
	in.Current = adapter.ToAdapterUser(current)
	_, err := svc.SignIn(context.Background(), in)
	require.NoError(t, err)
	user, err := svc.SignIn(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, current.ID, user.ID)
	assert.Equal(t, int64(1), countAccounts(t, db))
}

func TestLinkIdentityOwnedByAnotherUserIsRejected(t *testing.T) {
	db, svc := newLinking(t)
	owner := seedUser(t, db, testkit.StrPtr("owner@example.com"), true)
	other := seedUser(t, db, nil, false)

	in := githubInput("99", "")
	in.Current = adapter.ToAdapterUser(owner)
	_, err := svc.SignIn(context.Background(), in)
	require.NoError(t, err)

	in.Current = adapter.ToAdapterUser(other)
	_, err = svc.SignIn(context.Background(), in)
	assert.ErrorIs(t, err, ErrAccountLinkedElsewhere)

	var accounts []entities.Account
	require.NoError(t, db.Find(&accounts).Error)
	require.Len(t, accounts, 1)
	assert.Equal(t, owner.ID, accounts[0].UserID)

	var stored entities.User
	require.NoError(t, db.First(&stored, "id = ?", other.ID).Error)
	assert.Nil(t, stored.Email)
}

func TestLockedUserCanStillSignIn(t *testing.T) {
	db, svc := newLinking(t)
	user, err := svc.SignIn(context.Background(), githubInput("5", ""))
	require.NoError(t, err)
	require.NoError(t, db.Model(&entities.User{}).Where("id = ?", user.ID).Update("status", enums.UserStatusLocked).Error)

	again, err := svc.SignIn(context.Background(), githubInput("5", ""))
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
	assert.Equal(t, enums.UserStatusLocked, again.Status)
}

func TestSoftDeletedUserCannotSignIn(t *testing.T) {
	db, svc := newLinking(t)
	user, err := svc.SignIn(context.Background(), githubInput("6", ""))
	require.NoError(t, err)
	require.NoError(t, db.Delete(&entities.User{}, "id = ?", user.ID).Error)

	_, err = svc.SignIn(context.Background(), githubInput("6", ""))
	assert.ErrorIs(t, err, ErrSignInFailed)
}
