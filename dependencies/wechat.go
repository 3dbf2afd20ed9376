package dependencies

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Xushengqwer/keenmind_auth/config"
)

const (
	defaultWechatAuthorizeURL = "https://open.weixin.qq.com/connect/oauth2/authorize"
	defaultWechatAPIURL       = "https://api.weixin.qq.com"
)

// WechatClient 微信网页授权（公众号 OAuth2）客户端。
// - 流程: 跳转授权页拿到 code → 换取网页 access_token 与 openid → 拉取用户信息。
type WechatClient interface {
	// AuthCodeURL 生成授权页地址，redirectURI 为本服务的回调地址
	AuthCodeURL(redirectURI, state string) string

	// ExchangeCode 用授权码换取网页 access_token。微信业务错误码会被封装成 error。
	ExchangeCode(ctx context.Context, code string) (*WechatToken, error)

	// GetUserInfo 拉取用户信息，需要 snsapi_userinfo 授权
	GetUserInfo(ctx context.Context, accessToken, openID string) (*WechatUserInfo, error)
}

// WechatToken sns/oauth2/access_token 的响应
type WechatToken struct {
	AccessToken  string `json:"access_token"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	OpenID       string `json:"openid"`
	Scope        string `json:"scope"`
	UnionID      string `json:"unionid"`
}

// WechatUserInfo sns/userinfo 的响应
type WechatUserInfo struct {
	OpenID     string `json:"openid"`
	Nickname   string `json:"nickname"`
	HeadImgURL string `json:"headimgurl"`
	UnionID    string `json:"unionid"`
}

// wechatError 微信接口在 body 中返回的错误
type wechatError struct {
	ErrCode int    `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

type wechatClient struct {
	config       *config.WechatConfig
	client       *http.Client
	authorizeURL string
	apiURL       string
}

// NewWechatClient 创建一个新的 wechatClient 实例。
func NewWechatClient(cfg *config.WechatConfig) WechatClient {
	authorizeURL := cfg.AuthorizeURL
	if authorizeURL == "" {
		authorizeURL = defaultWechatAuthorizeURL
	}
	apiURL := strings.TrimRight(cfg.APIURL, "/")
	if apiURL == "" {
		apiURL = defaultWechatAPIURL
	}
	return &wechatClient{
		config: cfg,
		client: &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		authorizeURL: authorizeURL,
		apiURL:       apiURL,
	}
}

func (w *wechatClient) AuthCodeURL(redirectURI, state string) string {
	scope := w.config.Scope
	if scope == "" {
		scope = "snsapi_userinfo"
	}
	// 微信要求参数顺序固定，且必须带 #wechat_redirect
	return fmt.Sprintf("%s?appid=%s&redirect_uri=%s&response_type=code&scope=%s&state=%s#wechat_redirect",
		w.authorizeURL,
		url.QueryEscape(w.config.AppID),
		url.QueryEscape(redirectURI),
		url.QueryEscape(scope),
		url.QueryEscape(state),
	)
}

func (w *wechatClient) ExchangeCode(ctx context.Context, code string) (*WechatToken, error) {
	q := url.Values{}
	q.Set("appid", w.config.AppID)
	q.Set("secret", w.config.Secret)
	q.Set("code", code)
	q.Set("grant_type", "authorization_code")

	var token WechatToken
	if err := w.getJSON(ctx, w.apiURL+"/sns/oauth2/access_token?"+q.Encode(), &token); err != nil {
		return nil, fmt.Errorf("wechatClient.ExchangeCode: %w", err)
	}
	if token.OpenID == "" {
		return nil, fmt.Errorf("wechatClient.ExchangeCode: 响应缺少 openid")
	}
	return &token, nil
}

func (w *wechatClient) GetUserInfo(ctx context.Context, accessToken, openID string) (*WechatUserInfo, error) {
	q := url.Values{}
	q.Set("access_token", accessToken)
	q.Set("openid", openID)
	q.Set("lang", "zh_CN")

	var info WechatUserInfo
	if err := w.getJSON(ctx, w.apiURL+"/sns/userinfo?"+q.Encode(), &info); err != nil {
		return nil, fmt.Errorf("wechatClient.GetUserInfo: %w", err)
	}
	return &info, nil
}

// getJSON 发送 GET 请求并解析 JSON，同时检查 HTTP 状态码与微信业务错误码
func (w *wechatClient) getJSON(ctx context.Context, apiURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("创建微信 API 请求失败: %w", err)
	}
	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("请求微信 API 失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("读取微信 API 响应体失败: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("微信 API 返回非 200 状态码: %d, 响应体: %s", resp.StatusCode, string(body))
	}

	var apiErr wechatError
	if err := json.Unmarshal(body, &apiErr); err != nil {
		return fmt.Errorf("解析微信 API 响应失败: %w", err)
	}
	if apiErr.ErrCode != 0 {
		return fmt.Errorf("微信 API 业务错误: code=%d, msg=%s", apiErr.ErrCode, apiErr.ErrMsg)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("解析微信 API 响应失败: %w", err)
	}
	return nil
}
