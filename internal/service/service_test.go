package service

import (
	"fmt"
	"testing"

	"github.com/davidqnz/glsl-playground/internal/config"
	"github.com/davidqnz/glsl-playground/internal/db"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// newTestDB 为每个测试开一个独立的内存 sqlite 库。
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := db.Connect("sqlite", dsn)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	return gdb
}

func testConfig() config.Config {
	return config.Config{
		JWTSecret:       "test-secret",
		SessionCookie:   "session",
		SessionTTLHours: 24,
		BcryptCost:      bcrypt.MinCost,
	}
}
