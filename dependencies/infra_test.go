package dependencies

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Xushengqwer/keenmind_auth/config"
	"github.com/Xushengqwer/keenmind_auth/testkit"
)

func TestRedisOptions(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.RedisConfig
		wantAddr string
		wantDB   int
		wantPass string
	}{
		{"host and port", config.RedisConfig{Address: "127.0.0.1", Port: 6379}, "127.0.0.1:6379", 0, ""},
		{"host:port", config.RedisConfig{Address: "redis.internal:6380", Port: 6379}, "redis.internal:6380", 0, ""},
		{"url", config.RedisConfig{Address: "redis://:pw@cache:6379/2"}, "cache:6379", 2, "pw"},
		{"password overrides url", config.RedisConfig{Address: "redis://:pw@cache:6379/2", Password: "env"}, "cache:6379", 2, "env"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := redisOptions(&tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.wantAddr, opts.Addr)
			assert.Equal(t, tt.wantDB, opts.DB)
			assert.Equal(t, tt.wantPass, opts.Password)
		})
	}

	_, err := redisOptions(&config.RedisConfig{Address: "redis://cache:notaport/x"})
	assert.Error(t, err)
}

func TestInitRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := InitRedis(&config.RedisConfig{Address: mr.Addr()}, testkit.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	assert.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
}

func TestConnectWithRetry(t *testing.T) {
	logger := testkit.NewLogger(t)

	calls := 0
	err := connectWithRetry(logger, "flaky", 3, 0, func() error {
		calls++
		if calls < 2 {
			return errors.New("not yet")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, calls)

	calls = 0
	boom := errors.New("down")
	err = connectWithRetry(logger, "down", 3, 0, func() error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, calls)
}
