package config

import "time"

// GithubConfig GitHub OAuth App
type GithubConfig struct {
	ClientID     string `mapstructure:"client_id" json:"client_id" yaml:"client_id"`
	ClientSecret string `mapstructure:"client_secret" json:"client_secret" yaml:"client_secret"`
	// 以下仅测试时覆盖
	AuthURL  string `mapstructure:"auth_url" json:"auth_url" yaml:"auth_url"`
	TokenURL string `mapstructure:"token_url" json:"token_url" yaml:"token_url"`
	APIURL   string `mapstructure:"api_url" json:"api_url" yaml:"api_url"`
}

// WechatConfig 微信网页授权（公众号）
type WechatConfig struct {
	AppID  string `mapstructure:"appID" json:"appID" yaml:"appID"`
	Secret string `mapstructure:"secret" json:"secret" yaml:"secret"`
	// Scope snsapi_userinfo（默认）或 snsapi_base
	Scope string `mapstructure:"scope" json:"scope" yaml:"scope"`
	// 以下仅测试时覆盖
	AuthorizeURL string `mapstructure:"authorize_url" json:"authorize_url" yaml:"authorize_url"`
	APIURL       string `mapstructure:"api_url" json:"api_url" yaml:"api_url"`
}

// EmailConfig 魔法链接邮件
type EmailConfig struct {
	SMTPHost     string `mapstructure:"smtp_host" json:"smtp_host" yaml:"smtp_host"`
	SMTPPort     int    `mapstructure:"smtp_port" json:"smtp_port" yaml:"smtp_port"`
	SMTPUsername string `mapstructure:"smtp_username" json:"smtp_username" yaml:"smtp_username"`
	SMTPPassword string `mapstructure:"smtp_password" json:"smtp_password" yaml:"smtp_password"`
	From         string `mapstructure:"from" json:"from" yaml:"from"`
	// Cooldown 同一邮箱两次发送的最小间隔
	Cooldown time.Duration `mapstructure:"cooldown" json:"cooldown" yaml:"cooldown"`
	// RatePerMinute / Burst 按客户端 IP 限制登录入口的请求频率
	RatePerMinute int `mapstructure:"rate_per_minute" json:"rate_per_minute" yaml:"rate_per_minute"`
	Burst         int `mapstructure:"burst" json:"burst" yaml:"burst"`
}
