package auth

import (
	"context"
	"errors"
	"net/url"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Xushengqwer/keenmind_auth/config"
	"github.com/Xushengqwer/keenmind_auth/metrics"
	"github.com/Xushengqwer/keenmind_auth/models/entities"
	"github.com/Xushengqwer/keenmind_auth/repository/rdb"
	"github.com/Xushengqwer/keenmind_auth/repository/redis"
	"github.com/Xushengqwer/keenmind_auth/service/adapter"
	"github.com/Xushengqwer/keenmind_auth/service/login/oAuth"
	"github.com/Xushengqwer/keenmind_auth/testkit"
)

type fakeMailer struct {
	mu    sync.Mutex
	to    []string
	texts []string
	err   error
}

func (m *fakeMailer) Send(_ context.Context, to, _, _, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.to = append(m.to, to)
	m.texts = append(m.texts, text)
	return nil
}

var linkPattern = regexp.MustCompile(`https://keenmind\.me/api/auth/callback/email\?\S+`)

// lastLink 从最近一封邮件中取出登录链接的查询参数
func (m *fakeMailer) lastLink(t *testing.T) url.Values {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.texts)
	raw := linkPattern.FindString(m.texts[len(m.texts)-1])
	require.NotEmpty(t, raw)
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u.Query()
}

type emailFixture struct {
	svc    EmailAuthService
	mailer *fakeMailer
	db     *gorm.DB
	mr     *miniredis.Miniredis
}

func newEmailFixture(t *testing.T) *emailFixture {
	t.Helper()
	db := testkit.NewDB(t)
	mr, client := testkit.NewRedis(t)
	logger := testkit.NewLogger(t)
	ad := adapter.NewAdapter(db, rdb.NewUserRepository(db), rdb.NewAccountRepository(db), rdb.NewSessionRepository(db),
		rdb.NewVerificationTokenRepository(db), nil, metrics.Nop{}, logger, time.Hour)
	mailer := &fakeMailer{}
	svc, err := NewEmailAuthService(
		&config.EmailConfig{SMTPHost: "smtp.example.com", From: "noreply@keenmind.me", Cooldown: time.Minute},
		&config.AuthConfig{Secret: "test-secret", BaseURL: "https://keenmind.me"},
		ad, redis.NewEmailCooldownRepo(client), mailer, metrics.Nop{}, logger,
	)
	require.NoError(t, err)
	return &emailFixture{svc: svc, mailer: mailer, db: db, mr: mr}
}

func TestNewEmailAuthServiceRequiresConfig(t *testing.T) {
	_, err := NewEmailAuthService(&config.EmailConfig{From: "noreply@keenmind.me"}, &config.AuthConfig{Secret: "s"},
		nil, nil, nil, nil, testkit.NewLogger(t))
	assert.ErrorIs(t, err, oAuth.ErrMissingConfig)
}

func TestRequestLinkAndVerify(t *testing.T) {
	f := newEmailFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.RequestLink(ctx, "  Ada@Example.com ", "st", "203.0.113.7"))
	require.Equal(t, []string{"ada@example.com"}, f.mailer.to)

	q := f.mailer.lastLink(t)
	assert.Equal(t, "ada@example.com", q.Get("email"))
	assert.Equal(t, "st", q.Get("state"))
	raw := q.Get("token")
	require.Len(t, raw, rawTokenLength)

	// 数据库里只有哈希
	var stored entities.VerificationToken
	require.NoError(t, f.db.First(&stored).Error)
	assert.NotEqual(t, raw, stored.Token)
	assert.Equal(t, "203.0.113.7", stored.CreatedIP)

	user, err := f.svc.Verify(ctx, "ada@example.com", raw)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "ada@example.com", user.EmailValue())
	assert.NotNil(t, user.EmailVerified)

	_, err = f.svc.Verify(ctx, "ada@example.com", raw)
	assert.ErrorIs(t, err, ErrVerificationFailed)
}

func TestVerifyExistingUserKeepsIdentity(t *testing.T) {
	f := newEmailFixture(t)
	ctx := context.Background()
	existing := &entities.User{Email: testkit.StrPtr("grace@example.com"), Nickname: "Grace"}
	require.NoError(t, f.db.Create(existing).Error)

	require.NoError(t, f.svc.RequestLink(ctx, "grace@example.com", "", "unknown"))
	user, err := f.svc.Verify(ctx, "grace@example.com", f.mailer.lastLink(t).Get("token"))
	require.NoError(t, err)
	assert.Equal(t, existing.ID, user.ID)
	assert.NotNil(t, user.EmailVerified)
	assert.NotNil(t, user.LastLoginAt)
}

func TestRequestLinkValidationAndCooldown(t *testing.T) {
	f := newEmailFixture(t)
	ctx := context.Background()

	assert.ErrorIs(t, f.svc.RequestLink(ctx, "", "", "ip"), ErrInvalidEmail)
	assert.ErrorIs(t, f.svc.RequestLink(ctx, "not-an-email", "", "ip"), ErrInvalidEmail)

	require.NoError(t, f.svc.RequestLink(ctx, "ada@example.com", "", "ip"))
	assert.ErrorIs(t, f.svc.RequestLink(ctx, "ADA@example.com", "", "ip"), ErrCooldown)

	f.mr.FastForward(2 * time.Minute)
	assert.NoError(t, f.svc.RequestLink(ctx, "ada@example.com", "", "ip"))
}

func TestRequestLinkReleasesCooldownOnSendFailure(t *testing.T) {
	f := newEmailFixture(t)
	ctx := context.Background()

	f.mailer.err = errors.New("smtp down")
	require.Error(t, f.svc.RequestLink(ctx, "ada@example.com", "", "ip"))

	f.mailer.err = nil
	assert.NoError(t, f.svc.RequestLink(ctx, "ada@example.com", "", "ip"))
}

func TestVerifyRejectsWrongToken(t *testing.T) {
	f := newEmailFixture(t)
	ctx := context.Background()
	require.NoError(t, f.svc.RequestLink(ctx, "ada@example.com", "", "ip"))

	_, err := f.svc.Verify(ctx, "ada@example.com", "wrong")
	assert.ErrorIs(t, err, ErrVerificationFailed)
	_, err = f.svc.Verify(ctx, "other@example.com", f.mailer.lastLink(t).Get("token"))
	assert.ErrorIs(t, err, ErrVerificationFailed)
}
