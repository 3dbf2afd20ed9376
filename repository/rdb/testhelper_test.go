package rdb

import (
	"testing"

	"gorm.io/gorm"

	"github.com/Xushengqwer/keenmind_auth/testkit"
)

func newTestDB(t *testing.T) *gorm.DB {
	return testkit.NewDB(t)
}

func strPtr(s string) *string { return &s }
