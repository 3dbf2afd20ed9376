package config

import "time"

// AuthConfig 认证核心配置
type AuthConfig struct {
	// Secret 主密钥 (AUTH_SECRET)。state 签名、JWT 签名、令牌哈希的密钥都由它经 HKDF 派生
	Secret string `mapstructure:"secret" json:"secret" yaml:"secret"`
	// Issuer JWT 的 iss
	Issuer string `mapstructure:"issuer" json:"issuer" yaml:"issuer"`
	// BaseURL 对外地址，用于拼接回调地址与邮件链接，例如 https://keenmind.me
	BaseURL string `mapstructure:"base_url" json:"base_url" yaml:"base_url"`

	// 以下为空时使用 constants 中的默认值
	SessionMaxAge    time.Duration `mapstructure:"session_max_age" json:"session_max_age" yaml:"session_max_age"`
	SessionUpdateAge time.Duration `mapstructure:"session_update_age" json:"session_update_age" yaml:"session_update_age"`
	SessionCacheTTL  time.Duration `mapstructure:"session_cache_ttl" json:"session_cache_ttl" yaml:"session_cache_ttl"`
}
