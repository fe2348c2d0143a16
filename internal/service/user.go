package service

import (
	"errors"

	"github.com/davidqnz/glsl-playground/internal/auth"
	"github.com/davidqnz/glsl-playground/internal/config"
	"github.com/davidqnz/glsl-playground/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserService 封装账号注册与登录的业务逻辑。
type UserService struct {
	db  *gorm.DB
	cfg config.Config
}

func NewUserService(db *gorm.DB, cfg config.Config) *UserService {
	return &UserService{db: db, cfg: cfg}
}

// SignUp 注册新用户。不做先查后插：直接插入并把邮箱唯一索引的冲突
// 映射成 ErrEmailTaken，并发注册同一邮箱也不会漏成 500。
func (s *UserService) SignUp(email, password string) (*models.User, error) {
	hash, err := auth.HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	user := models.User{ID: uuid.NewString(), Email: email, PasswordHash: hash}
	if err := s.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return &user, nil
}

// SignIn 校验邮箱密码并签发会话 token。无论是邮箱不存在还是密码不对，
// 都返回同一个 ErrInvalidCredentials，不暴露具体是哪一项错了。
func (s *UserService) SignIn(email, password string) (*models.User, string, error) {
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if !auth.VerifyPassword(user.PasswordHash, password) {
		return nil, "", ErrInvalidCredentials
	}
	token, err := auth.GenerateSessionToken(user.ID, user.Email, s.cfg.JWTSecret, s.cfg.SessionTTLHours)
	if err != nil {
		return nil, "", err
	}
	return &user, token, nil
}
