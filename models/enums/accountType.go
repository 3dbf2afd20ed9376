package enums

// AccountType 外部账号类型
type AccountType string

const (
	AccountTypeOAuth AccountType = "oauth"
	AccountTypeEmail AccountType = "email"
)

// 内置身份提供方
const (
	ProviderGithub = "github"
	ProviderWechat = "wechat"
	ProviderEmail  = "email"
)
