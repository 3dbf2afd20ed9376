package oAuth

import (
	"context"
	"time"

	"github.com/Xushengqwer/keenmind_auth/config"
	"github.com/Xushengqwer/keenmind_auth/dependencies"
	"github.com/Xushengqwer/keenmind_auth/models/dto"
	"github.com/Xushengqwer/keenmind_auth/models/enums"
)

// wechatProvider 微信网页授权。微信不提供邮箱。
type wechatProvider struct {
	client      dependencies.WechatClient
	callbackURL string
	withProfile bool
	now         func() time.Time
}

// NewWechatProvider app id 与 secret 必填
func NewWechatProvider(cfg *config.WechatConfig, baseURL string) (Provider, error) {
	if err := requireConfig(enums.ProviderWechat, map[string]string{
		"appID":  cfg.AppID,
		"secret": cfg.Secret,
	}); err != nil {
		return nil, err
	}
	return &wechatProvider{
		client:      dependencies.NewWechatClient(cfg),
		callbackURL: CallbackURL(baseURL, enums.ProviderWechat),
		// snsapi_base 拿不到昵称头像，跳过 userinfo
		withProfile: cfg.Scope != "snsapi_base",
		now:         time.Now,
	}, nil
}

func (p *wechatProvider) ID() string              { return enums.ProviderWechat }
func (p *wechatProvider) Type() enums.AccountType { return enums.AccountTypeOAuth }

func (p *wechatProvider) AuthCodeURL(state string) string {
	return p.client.AuthCodeURL(p.callbackURL, state)
}

func (p *wechatProvider) Exchange(ctx context.Context, code string) (*dto.OAuthProfile, *dto.AdapterAccount, error) {
	token, err := p.client.ExchangeCode(ctx, code)
	if err != nil {
		return nil, nil, err
	}

	accountID := token.OpenID
	if token.UnionID != "" {
		accountID = token.UnionID
	}
	profile := &dto.OAuthProfile{ID: accountID}

	if p.withProfile {
		info, err := p.client.GetUserInfo(ctx, token.AccessToken, token.OpenID)
		if err != nil {
			return nil, nil, err
		}
		profile.Name = strPtr(info.Nickname)
		profile.Image = strPtr(info.HeadImgURL)
		// userinfo 里的 unionid 优先，令牌响应里不一定带
		if info.UnionID != "" && token.UnionID == "" {
			accountID = info.UnionID
			profile.ID = accountID
		}
	}

	account := &dto.AdapterAccount{
		Type:              enums.AccountTypeOAuth,
		Provider:          enums.ProviderWechat,
		ProviderAccountID: accountID,
		AccessToken:       strPtr(token.AccessToken),
		RefreshToken:      strPtr(token.RefreshToken),
		Scope:             strPtr(token.Scope),
	}
	if token.ExpiresIn > 0 {
		exp := p.now().Add(time.Duration(token.ExpiresIn) * time.Second).Unix()
		account.ExpiresAt = &exp
	}
	return profile, account, nil
}
