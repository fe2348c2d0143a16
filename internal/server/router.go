package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/davidqnz/glsl-playground/internal/auth"
	"github.com/davidqnz/glsl-playground/internal/config"
	"github.com/davidqnz/glsl-playground/internal/metrics"
	"github.com/davidqnz/glsl-playground/internal/mw"
	"github.com/davidqnz/glsl-playground/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// SetupRouter 统一初始化 Gin 中间件和 REST API。
func SetupRouter(cfg config.Config, gdb *gorm.DB) *gin.Engine {
	r := gin.New()
	// 意外 panic 统一收敛成 500 信封，不向客户端泄露内部细节。
	r.Use(gin.CustomRecovery(func(c *gin.Context, err interface{}) {
		log.Error().Interface("panic", err).Str("path", c.Request.URL.Path).Msg("recovered")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"status": http.StatusInternalServerError, "message": "internal server error"})
	}))
	r.Use(metrics.GinMiddleware())
	r.Use(mw.CORS(cfg.Env))
	// 控制单个 IP+路由的速率，挡住失控的保存循环。
	r.Use(mw.RateLimit(rate.Every(time.Second/20), 40))

	h := NewHandler(cfg, service.NewUserService(gdb, cfg), service.NewProgramService(gdb))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	api.GET("/health-check", h.HealthCheck)

	api.POST("/users", h.SignUp)
	api.GET("/users/me", h.Me)
	api.POST("/users/sessions", h.LogIn)
	api.DELETE("/users/sessions", h.LogOut)

	api.GET("/programs/:id", h.GetProgram)
	api.POST("/diagnostics", h.Diagnostics)

	// 需要会话 cookie 的接口。
	authed := api.Group("")
	authed.Use(auth.Middleware(cfg))
	authed.GET("/programs", h.ListPrograms)
	authed.POST("/programs", h.CreateProgram)
	authed.PATCH("/programs/:id", h.UpdateProgram)
	authed.DELETE("/programs/:id", h.DeleteProgram)

	// 有前端构建产物就按 SPA 方式托管。根级通配路由会和 /metrics、/api/v1
	// 冲突导致 Gin 在注册时 panic，所以静态回落挂在 NoRoute 上：只有没被
	// 任何已注册路由命中的请求才会走到这里。
	distDir := filepath.Join(".", "frontend", "dist")
	if _, err := os.Stat(filepath.Join(distDir, "index.html")); err == nil {
		index := filepath.Join(distDir, "index.html")
		r.NoRoute(func(c *gin.Context) {
			if c.Request.Method != http.MethodGet {
				c.Status(http.StatusNotFound)
				return
			}
			rel := strings.TrimPrefix(filepath.Clean(c.Request.URL.Path), "/")
			if rel == "" || rel == "." {
				c.File(index)
				return
			}
			// 未命中的 API 路径仍然是 404，不能回落到页面。
			if strings.HasPrefix(rel, "api/") || rel == "metrics" {
				c.Status(http.StatusNotFound)
				return
			}
			target := filepath.Join(distDir, rel)
			if fi, err := os.Stat(target); err == nil && !fi.IsDir() {
				c.File(target)
				return
			}
			if strings.Contains(rel, ".") {
				c.Status(http.StatusNotFound)
				return
			}
			c.File(index)
		})
	}
	return r
}
