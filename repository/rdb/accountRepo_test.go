package rdb

import (
	"context"
	"testing"

	"github.com/Xushengqwer/go-common/commonerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Xushengqwer/keenmind_auth/models/entities"
	"github.com/Xushengqwer/keenmind_auth/models/enums"
)

func TestAccountRepository(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	owner := &entities.User{Email: strPtr("owner@example.com")}
	other := &entities.User{Email: strPtr("other@example.com")}
	require.NoError(t, users.CreateUser(ctx, db, owner))
	require.NoError(t, users.CreateUser(ctx, db, other))

	acc := &entities.Account{
		UserID:            owner.ID,
		Type:              enums.AccountTypeOAuth,
		Provider:          enums.ProviderGithub,
		ProviderAccountID: "00123",
	}
	require.NoError(t, repo.CreateAccount(ctx, db, acc))

	t.Run("同一外部身份不能绑定两次", func(t *testing.T) {
		err := repo.CreateAccount(ctx, db, &entities.Account{
			UserID:            other.ID,
			Type:              enums.AccountTypeOAuth,
			Provider:          enums.ProviderGithub,
			ProviderAccountID: "00123",
		})
		assert.ErrorIs(t, err, ErrDuplicate)
	})

	t.Run("按外部身份查到所属用户", func(t *testing.T) {
		u, err := repo.GetUserByAccount(ctx, db, enums.ProviderGithub, "00123")
		require.NoError(t, err)
		assert.Equal(t, owner.ID, u.ID)

		// 字符串形式的 ID 不做数值归一化
		_, err = repo.GetUserByAccount(ctx, db, enums.ProviderGithub, "123")
		assert.ErrorIs(t, err, commonerrors.ErrRepoNotFound)
	})

	t.Run("列出绑定账号", func(t *testing.T) {
		list, err := repo.ListAccountsByUser(ctx, owner.ID)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "00123", list[0].ProviderAccountID)
	})

	t.Run("解绑不存在的账号", func(t *testing.T) {
		err := repo.DeleteAccount(ctx, db, enums.ProviderWechat, "nope")
		assert.ErrorIs(t, err, commonerrors.ErrRepoNotFound)
	})

	t.Run("软删除的用户不能通过外部身份解析", func(t *testing.T) {
		require.NoError(t, users.SoftDeleteUser(ctx, db, owner.ID))
		_, err := repo.GetUserByAccount(ctx, db, enums.ProviderGithub, "00123")
		assert.ErrorIs(t, err, commonerrors.ErrRepoNotFound)

		_, err = repo.GetAccount(ctx, db, enums.ProviderGithub, "00123")
		require.NoError(t, err, "账号行本身仍在")
		require.NoError(t, repo.DeleteAccountsByUser(ctx, db, owner.ID))
		_, err = repo.GetAccount(ctx, db, enums.ProviderGithub, "00123")
		assert.ErrorIs(t, err, commonerrors.ErrRepoNotFound)
	})
}
