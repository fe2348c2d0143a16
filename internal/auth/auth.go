package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/davidqnz/glsl-playground/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Claims 是会话 token 中携带的用户身份，随 http-only cookie 往返。
type Claims struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

func HashPassword(pw string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	return string(b), err
}

func VerifyPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// GenerateSessionToken 签发会话 token，过期时间由 ttlHours 决定。
func GenerateSessionToken(userID, email, secret string, ttlHours int) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(ttlHours) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ParseSessionToken(tokenStr, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// SetSessionCookie 把签好的 token 写入 http-only cookie，
// dev 以外的环境强制 secure，凭证不走明文链路。
func SetSessionCookie(c *gin.Context, cfg config.Config, token string) {
	maxAge := cfg.SessionTTLHours * 3600
	c.SetCookie(cfg.SessionCookie, token, maxAge, "/", "", secureCookie(cfg), true)
}

// ClearSessionCookie 清除会话 cookie，登出本身无状态、总是成功。
func ClearSessionCookie(c *gin.Context, cfg config.Config) {
	c.SetCookie(cfg.SessionCookie, "", -1, "/", "", secureCookie(cfg), true)
}

func secureCookie(cfg config.Config) bool {
	return cfg.Env != "dev"
}

// SessionFromCookie 尝试从请求 cookie 恢复会话身份，cookie 缺失、签名
// 无效或已过期都返回 nil。/users/me 和鉴权中间件共享这条验证路径。
func SessionFromCookie(c *gin.Context, cfg config.Config) *Claims {
	tokenStr, err := c.Cookie(cfg.SessionCookie)
	if err != nil || tokenStr == "" {
		return nil
	}
	claims, err := ParseSessionToken(tokenStr, cfg.JWTSecret)
	if err != nil {
		return nil
	}
	return claims
}

// Middleware 保护需要登录的路由：会话无效时以 401 中止请求。
func Middleware(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := SessionFromCookie(c, cfg)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": http.StatusUnauthorized, "message": "authentication required"})
			return
		}
		c.Set("user", claims)
		c.Next()
	}
}

// CurrentUser 取出中间件放入上下文的会话身份。
func CurrentUser(c *gin.Context) *Claims {
	if v, ok := c.Get("user"); ok {
		if claims, ok2 := v.(*Claims); ok2 {
			return claims
		}
	}
	return nil
}
