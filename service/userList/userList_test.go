package userList

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Xushengqwer/go-common/commonerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Xushengqwer/keenmind_auth/models/dto"
	"github.com/Xushengqwer/keenmind_auth/models/entities"
	"github.com/Xushengqwer/keenmind_auth/models/enums"
	"github.com/Xushengqwer/keenmind_auth/repository/rdb"
	"github.com/Xushengqwer/keenmind_auth/testkit"
)

func TestList(t *testing.T) {
	db := testkit.NewDB(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	users := []entities.User{
		{Email: testkit.StrPtr("alice@example.com"), Nickname: "Alice", Status: enums.UserStatusActive, CreatedAt: base},
		{Email: testkit.StrPtr("bob@example.com"), Nickname: "Bob", Status: enums.UserStatusLocked, CreatedAt: base.Add(time.Hour)},
		{Email: testkit.StrPtr("carol@corp.io"), Nickname: "Carol", Status: enums.UserStatusActive, CreatedAt: base.Add(2 * time.Hour)},
	}
	require.NoError(t, db.Create(&users).Error)
	require.NoError(t, db.Delete(&entities.User{}, users[2].ID).Error)

	svc := NewUserListQueryService(rdb.NewUserQuery(db), testkit.NewLogger(t))
	ctx := context.Background()

	out, err := svc.List(ctx, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 2, out.Total)
	require.Len(t, out.Items, 2)
	assert.Equal(t, "Bob", out.Items[0].Nickname, "按创建时间倒序")
	assert.Equal(t, "LOCKED", out.Items[0].Status)

	out, err = svc.List(ctx, &dto.UserQueryDTO{Keyword: "ALICE"})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, users[0].ID, out.Items[0].ID)

	out, err = svc.List(ctx, &dto.UserQueryDTO{Status: "LOCKED"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, out.Total)
}

type failingQuery struct{}

func (failingQuery) ListUsers(context.Context, *dto.UserQueryDTO) ([]entities.User, int64, error) {
	return nil, 0, errors.New("connection reset")
}

func TestListRepoFailure(t *testing.T) {
	svc := NewUserListQueryService(failingQuery{}, testkit.NewLogger(t))
	_, err := svc.List(context.Background(), &dto.UserQueryDTO{})
	assert.ErrorIs(t, err, commonerrors.ErrSystemError)
}
