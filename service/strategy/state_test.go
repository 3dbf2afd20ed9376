package strategy

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Xushengqwer/keenmind_auth/config"
	"github.com/Xushengqwer/keenmind_auth/dependencies"
)

func TestStateRoundTrip(t *testing.T) {
	codec, err := NewStateCodec("test-secret", 0)
	require.NoError(t, err)

	encoded, err := codec.Encode(Token, "github", "/mapi/redirect?provider=github")
	require.NoError(t, err)
	assert.NotContains(t, encoded, "github", "载荷加密后不可读")

	st, err := codec.Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Version)
	assert.Equal(t, Token, st.Strategy)
	assert.Equal(t, "github", st.Provider)
	assert.Equal(t, "/mapi/redirect?provider=github", st.RedirectTo)
	assert.NotEmpty(t, st.Nonce)
	assert.NotZero(t, st.IssuedAt)

	again, err := codec.Encode(Token, "github", "")
	require.NoError(t, err)
	assert.NotEqual(t, encoded, again)
}

func TestStateRejectsTampering(t *testing.T) {
	codec, err := NewStateCodec("test-secret", 0)
	require.NoError(t, err)
	encoded, err := codec.Encode(Database, "wechat", "")
	require.NoError(t, err)

	_, err = codec.Decode("")
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = codec.Decode("strategy=jwt")
	assert.ErrorIs(t, err, ErrInvalidState)

	tampered := []byte(encoded)
	tampered[len(tampered)/2] ^= 1
	_, err = codec.Decode(string(tampered))
	assert.ErrorIs(t, err, ErrInvalidState)

	other, err := NewStateCodec("another-secret", 0)
	require.NoError(t, err)
	_, err = other.Decode(encoded)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = codec.Encode(Strategy("jwt"), "github", "")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestStateRejectsUnknownVersionAndStrategy(t *testing.T) {
	codec, err := NewStateCodec("test-secret", 0)
	require.NoError(t, err)
	now := time.Now().Unix()

	v2, err := codec.oauth.Encode(stateName, State{Version: 2, Strategy: Database, Provider: "github", Nonce: "n", IssuedAt: now})
	require.NoError(t, err)
	_, err = codec.Decode(v2)
	assert.ErrorIs(t, err, ErrInvalidState)

	bad, err := codec.oauth.Encode(stateName, State{Version: 1, Strategy: "session", Provider: "github", Nonce: "n", IssuedAt: now})
	require.NoError(t, err)
	_, err = codec.Decode(bad)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestStateExpires(t *testing.T) {
	now := time.Now()
	codec, err := NewStateCodec("test-secret", 0, WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	encoded, err := codec.Encode(Database, "github", "")
	require.NoError(t, err)

	now = now.Add(14 * time.Minute)
	_, err = codec.Decode(encoded)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = codec.Decode(encoded)
	assert.ErrorIs(t, err, ErrInvalidState)

	// 来自未来的 state 同样拒绝
	future, err := NewStateCodec("test-secret", 0, WithClock(func() time.Time { return now.Add(time.Hour) }))
	require.NoError(t, err)
	encoded, err = future.Encode(Database, "github", "")
	require.NoError(t, err)
	_, err = codec.Decode(encoded)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestLinkStateLivesAsLongAsVerificationToken(t *testing.T) {
	now := time.Now()
	codec, err := NewStateCodec("test-secret", 0, WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	link, err := codec.EncodeLink("/dashboard")
	require.NoError(t, err)

	now = now.Add(23 * time.Hour)
	st, err := codec.DecodeLink(link)
	require.NoError(t, err)
	assert.Equal(t, Database, st.Strategy)
	assert.Equal(t, "email", st.Provider)
	assert.Equal(t, "/dashboard", st.RedirectTo)

	now = now.Add(2 * time.Hour)
	_, err = codec.DecodeLink(link)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestLinkAndOAuthStatesAreNotInterchangeable(t *testing.T) {
	codec, err := NewStateCodec("test-secret", 0, WithLinkMaxAge(time.Hour))
	require.NoError(t, err)

	link, err := codec.EncodeLink("")
	require.NoError(t, err)
	oauth, err := codec.Encode(Database, "github", "")
	require.NoError(t, err)

	_, err = codec.Decode(link)
	assert.ErrorIs(t, err, ErrInvalidState)
	_, err = codec.DecodeLink(oauth)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestStateCodecRequiresSecret(t *testing.T) {
	_, err := NewStateCodec("", 0)
	assert.ErrorIs(t, err, dependencies.ErrMissingSecret)
}

func TestNewConfig(t *testing.T) {
	auth := &config.AuthConfig{}

	db, err := NewConfig(Database, &config.CookieConfig{}, auth)
	require.NoError(t, err)
	assert.Equal(t, "next-auth.session-token", db.CookieName)
	assert.Equal(t, 14*24*time.Hour, db.MaxAge)
	assert.Equal(t, 24*time.Hour, db.UpdateAge)
	assert.Equal(t, "/", db.Path)
	assert.Equal(t, "next-auth.state-nonce", db.NonceCookieName())

	tk, err := NewConfig(Token, &config.CookieConfig{Secure: true}, auth)
	require.NoError(t, err)
	assert.Equal(t, "__Secure-next-auth.jwt-session-token", tk.CookieName)
	assert.Equal(t, []string{"next-auth.jwt-session-token", "__Secure-next-auth.jwt-session-token"}, tk.CookieNames())

	strict, err := NewConfig(Database, &config.CookieConfig{Secure: true, SameSite: "strict"}, auth)
	require.NoError(t, err)
	assert.Equal(t, "__Secure-next-auth.state-nonce", strict.NonceCookieName())
	assert.Equal(t, http.SameSiteStrictMode, strict.CookieAttrs().SameSite)
	assert.Equal(t, http.SameSiteLaxMode, strict.NonceCookieAttrs().SameSite)

	_, err = NewConfig(Strategy("jwt"), &config.CookieConfig{}, auth)
	assert.Error(t, err)
}
