package admin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Xushengqwer/keenmind_auth/config"
	"github.com/Xushengqwer/keenmind_auth/models/ids"
)

func TestStaticAllowList_Default(t *testing.T) {
	list, err := NewStaticAllowList(nil)
	require.NoError(t, err)

	ok, err := list.IsAdmin(context.Background(), ids.MustDecode("872817149208"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = list.IsAdmin(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStaticAllowList_Configured(t *testing.T) {
	list, err := NewStaticAllowList(&config.AdminConfig{UserIDs: []string{"7", "9007199254740993"}})
	require.NoError(t, err)

	for _, id := range []ids.ID{7, ids.MustDecode("9007199254740993")} {
		ok, err := list.IsAdmin(context.Background(), id)
		require.NoError(t, err)
		assert.True(t, ok, id.String())
	}
	ok, _ := list.IsAdmin(context.Background(), ids.MustDecode("872817149208"))
	assert.False(t, ok, "配置后不再使用默认名单")
	ok, _ = list.IsAdmin(context.Background(), 0)
	assert.False(t, ok)
}

func TestStaticAllowList_InvalidID(t *testing.T) {
	_, err := NewStaticAllowList(&config.AdminConfig{UserIDs: []string{"12a"}})
	assert.ErrorIs(t, err, ids.ErrInvalidID)
}
