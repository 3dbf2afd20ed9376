package docs

// 仅供 Swagger 注解引用的类型。
// 多数接口直接返回字面 JSON (gin.H)，swag 无法从中推断结构，这里给出对应的具名类型。

import (
	"github.com/Xushengqwer/go-common/response"
)

// OKResponse POST /api/auth/signin/email 的成功响应 {ok:true}
type OKResponse struct {
	OK bool `json:"ok" example:"true"`
}

// EmptyResponse 成功但无数据，响应体为 {}
// 用于 /api/auth/signout、/mapi/logout
type EmptyResponse struct{}

// ProvidersResponse GET /api/auth/providers
type ProvidersResponse struct {
	Providers []string `json:"providers" example:"github,wechat,email"`
}

// HealthResponse GET /healthz
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

// SwaggerAPIErrorResponseString 限流中间件返回的 go-common 标准错误包
// 用于登录入口的 429
type SwaggerAPIErrorResponseString struct {
	response.APIResponse[string]
}
