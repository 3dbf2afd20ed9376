package dependencies

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// ErrMissingSecret 未配置 AUTH_SECRET
var ErrMissingSecret = errors.New("AUTH_SECRET 未配置")

// 各用途的 HKDF info，互不相同以保证派生出的密钥彼此独立
const (
	KeyInfoJWT        = "keenmind_auth jwt signing key"
	KeyInfoStateHash  = "keenmind_auth state hash key"
	KeyInfoStateBlock = "keenmind_auth state block key"
	KeyInfoTokenHash  = "keenmind_auth verification token hash key"
)

// DeriveKey 用 HKDF-SHA256 从主密钥派生指定用途、指定长度的子密钥
func DeriveKey(secret, info string, length int) ([]byte, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	key := make([]byte, length)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(info)), key); err != nil {
		return nil, fmt.Errorf("派生密钥失败 (%s): %w", info, err)
	}
	return key, nil
}
