package dependencies

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"

	"github.com/Xushengqwer/keenmind_auth/config"
)

const defaultGithubAPIURL = "https://api.github.com"

// GithubClient GitHub OAuth App 客户端
type GithubClient interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)

	// FetchUser 读取 /user；公开资料没有邮箱时回退到 /user/emails 中已验证的主邮箱
	FetchUser(ctx context.Context, token *oauth2.Token) (*GithubUser, error)
}

// GithubUser GitHub 用户资料
type GithubUser struct {
	ID            int64  `json:"id"`
	Login         string `json:"login"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	AvatarURL     string `json:"avatar_url"`
	EmailVerified bool   `json:"-"`
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

type githubClient struct {
	oauth  *oauth2.Config
	http   *http.Client
	apiURL string
}

// NewGithubClient redirectURL 为本服务的回调地址
func NewGithubClient(cfg *config.GithubConfig, redirectURL string) GithubClient {
	endpoint := github.Endpoint
	if cfg.AuthURL != "" {
		endpoint.AuthURL = cfg.AuthURL
	}
	if cfg.TokenURL != "" {
		endpoint.TokenURL = cfg.TokenURL
	}
	apiURL := strings.TrimRight(cfg.APIURL, "/")
	if apiURL == "" {
		apiURL = defaultGithubAPIURL
	}
	return &githubClient{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     endpoint,
			RedirectURL:  redirectURL,
			Scopes:       []string{"read:user", "user:email"},
		},
		http: &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		apiURL: apiURL,
	}
}

func (g *githubClient) AuthCodeURL(state string) string {
	return g.oauth.AuthCodeURL(state)
}

func (g *githubClient) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := g.oauth.Exchange(context.WithValue(ctx, oauth2.HTTPClient, g.http), code)
	if err != nil {
		return nil, fmt.Errorf("githubClient.Exchange: 授权码换取令牌失败: %w", err)
	}
	return token, nil
}

func (g *githubClient) FetchUser(ctx context.Context, token *oauth2.Token) (*GithubUser, error) {
	client := g.oauth.Client(context.WithValue(ctx, oauth2.HTTPClient, g.http), token)

	var user GithubUser
	if err := g.getJSON(ctx, client, "/user", &user); err != nil {
		return nil, fmt.Errorf("githubClient.FetchUser: %w", err)
	}
	if user.ID == 0 {
		return nil, fmt.Errorf("githubClient.FetchUser: 响应缺少用户 ID")
	}
	// 公开邮箱只能是已验证的邮箱
	if user.Email != "" {
		user.EmailVerified = true
		return &user, nil
	}

	var emails []githubEmail
	if err := g.getJSON(ctx, client, "/user/emails", &emails); err != nil {
		return nil, fmt.Errorf("githubClient.FetchUser: %w", err)
	}
	for _, e := range emails {
		if e.Primary && e.Verified {
			user.Email = e.Email
			user.EmailVerified = true
			break
		}
	}
	return &user, nil
}

func (g *githubClient) getJSON(ctx context.Context, client *http.Client, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.apiURL+path, nil)
	if err != nil {
		return fmt.Errorf("创建 GitHub API 请求失败: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("请求 GitHub API 失败 (%s): %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("读取 GitHub API 响应体失败 (%s): %w", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GitHub API 返回非 200 状态码 (%s): %d", path, resp.StatusCode)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("解析 GitHub API 响应失败 (%s): %w", path, err)
	}
	return nil
}
