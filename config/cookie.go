package config

// CookieConfig 会话 Cookie 参数。名称固定，见 constants。
type CookieConfig struct {
	// Domain 留空表示仅对当前主机生效
	Domain string `mapstructure:"domain" json:"domain" yaml:"domain"`

	// Path 通常为 "/"
	Path string `mapstructure:"path" json:"path" yaml:"path"`

	// Secure 为 true 时只通过 HTTPS 发送，且 Cookie 名使用 __Secure- 前缀。生产环境必须开启。
	Secure bool `mapstructure:"secure" json:"secure" yaml:"secure"`

	// SameSite 可选 "Lax" (默认), "Strict", "None"。"None" 必须同时 Secure=true。
	SameSite string `mapstructure:"same_site" json:"same_site" yaml:"same_site"`
}
