package db

import (
	"fmt"
	"time"

	"github.com/davidqnz/glsl-playground/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect 按配置的驱动打开数据库。Postgres 带简单重试以等待容器就绪，
// sqlite 用于本地开发和测试（支持 file::memory: 内存库）。
func Connect(driver, dsn string) (*gorm.DB, error) {
	// TranslateError 让唯一约束冲突统一成 gorm.ErrDuplicatedKey，
	// 业务层据此区分 409 和真正的 500。
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent), TranslateError: true}

	switch driver {
	case "sqlite":
		gdb, err := gorm.Open(sqlite.Open(dsn), cfg)
		if err != nil {
			return nil, err
		}
		return gdb, nil
	case "postgres":
		var gdb *gorm.DB
		var err error
		for i := 0; i < 10; i++ {
			gdb, err = gorm.Open(postgres.Open(dsn), cfg)
			if err == nil {
				sqlDB, err2 := gdb.DB()
				if err2 == nil {
					sqlDB.SetMaxIdleConns(5)
					sqlDB.SetMaxOpenConns(20)
					sqlDB.SetConnMaxLifetime(time.Hour)
					return gdb, nil
				}
				err = err2
			}
			time.Sleep(time.Duration(500+i*200) * time.Millisecond)
		}
		return nil, err
	default:
		return nil, fmt.Errorf("unknown database driver %q", driver)
	}
}

// Migrate 自动迁移全部表结构。
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(&models.User{}, &models.Program{})
}
