package config

import (
	"github.com/Xushengqwer/go-common/config"
)

// KeenmindAuthConfig 服务的全部配置，由 core.LoadConfig 从 YAML 加载，main 中再用环境变量覆盖
type KeenmindAuthConfig struct {
	ZapConfig      config.ZapConfig     `mapstructure:"zapConfig" json:"zapConfig" yaml:"zapConfig"`
	GormLogConfig  config.GormLogConfig `mapstructure:"gormLogConfig" json:"gormLogConfig" yaml:"gormLogConfig"`
	ServerConfig   config.ServerConfig  `mapstructure:"serverConfig" json:"serverConfig" yaml:"serverConfig"`
	TracerConfig   config.TracerConfig  `mapstructure:"tracerConfig" json:"tracerConfig" yaml:"tracerConfig"`
	DatabaseConfig DatabaseConfig       `mapstructure:"databaseConfig" json:"databaseConfig" yaml:"databaseConfig"`
	RedisConfig    RedisConfig          `mapstructure:"redisConfig" json:"redisConfig" yaml:"redisConfig"`
	AuthConfig     AuthConfig           `mapstructure:"authConfig" json:"authConfig" yaml:"authConfig"`
	GithubConfig   GithubConfig         `mapstructure:"githubConfig" json:"githubConfig" yaml:"githubConfig"`
	WechatConfig   WechatConfig         `mapstructure:"wechatConfig" json:"wechatConfig" yaml:"wechatConfig"`
	EmailConfig    EmailConfig          `mapstructure:"emailConfig" json:"emailConfig" yaml:"emailConfig"`
	CookieConfig   CookieConfig         `mapstructure:"cookieConfig" json:"cookieConfig" yaml:"cookieConfig"`
	AdminConfig    AdminConfig          `mapstructure:"adminConfig" json:"adminConfig" yaml:"adminConfig"`
	MobileConfig   MobileConfig         `mapstructure:"mobileConfig" json:"mobileConfig" yaml:"mobileConfig"`
}
