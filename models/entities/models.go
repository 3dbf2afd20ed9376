package entities

// Models 需要自动迁移的全部表，启动与测试共用
func Models() []any {
	return []any{
		&User{},
		&Account{},
		&Session{},
		&VerificationToken{},
		&Domain{},
		&Topic{},
	}
}
