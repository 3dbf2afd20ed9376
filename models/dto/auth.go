package dto

// EmailSignInData 邮件登录请求
type EmailSignInData struct {
	// 邮箱地址，缺失时返回 400
	Email string `json:"email" form:"email" example:"user@example.com"`
	// 登录成功后跳转的站内路径
	RedirectTo string `json:"redirectTo" form:"redirectTo" example:"/profile"`
}
