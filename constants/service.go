package constants

// 服务标识，用于链路追踪与指标命名
const (
	ServiceName    = "keenmind_auth"
	ServiceVersion = "1.0.0"
)
