package config

import "time"

// RedisConfig 会话缓存、JTI 黑名单与邮件冷却共用的 Redis 连接
type RedisConfig struct {
	// Address 主机名（与 Port 组合）、host:port，或 redis:// 连接串 (REDIS_ADDRESS)
	Address string `mapstructure:"address" yaml:"address"`
	Port    int    `mapstructure:"port" yaml:"port"`
	// Password 非空时覆盖连接串中的密码 (REDIS_PASSWORD)
	Password string `mapstructure:"password" yaml:"password"`
	DB       int    `mapstructure:"db" yaml:"db"`

	DialTimeout  time.Duration `mapstructure:"dial_timeout" yaml:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	// PoolSize 为 0 时使用 go-redis 默认值
	PoolSize     int `mapstructure:"pool_size" yaml:"pool_size"`
	MinIdleConns int `mapstructure:"min_idle_conns" yaml:"min_idle_conns"`
}
