package config

// AdminConfig 管理员白名单
type AdminConfig struct {
	// UserIDs 十进制字符串形式的用户 ID
	UserIDs []string `mapstructure:"user_ids" json:"user_ids" yaml:"user_ids"`
}

// MobileConfig 移动端深链接
type MobileConfig struct {
	// Scheme App 注册的 URL scheme，默认 keenmind.me
	Scheme string `mapstructure:"scheme" json:"scheme" yaml:"scheme"`
	// AppName 跳转页上展示的应用名
	AppName string `mapstructure:"app_name" json:"app_name" yaml:"app_name"`
}
