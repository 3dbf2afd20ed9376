package enums

// TokenType 验证令牌用途
type TokenType string

const (
	TokenTypeEmailVerification TokenType = "EMAIL_VERIFICATION"
	TokenTypePasswordReset     TokenType = "PASSWORD_RESET"
	TokenTypeLogin             TokenType = "LOGIN"
)
