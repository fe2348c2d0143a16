package server

import (
	"errors"
	"net/http"

	"github.com/davidqnz/glsl-playground/internal/auth"
	"github.com/davidqnz/glsl-playground/internal/config"
	"github.com/davidqnz/glsl-playground/internal/diagnostics"
	"github.com/davidqnz/glsl-playground/internal/metrics"
	"github.com/davidqnz/glsl-playground/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

// Handler 聚合所有 HTTP handler，依赖注入 service 层。
type Handler struct {
	cfg        config.Config
	userSvc    *service.UserService
	programSvc *service.ProgramService
}

func NewHandler(cfg config.Config, userSvc *service.UserService, programSvc *service.ProgramService) *Handler {
	return &Handler{cfg: cfg, userSvc: userSvc, programSvc: programSvc}
}

// apiError 按统一的 {status, message} 信封返回错误。
func apiError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"status": status, "message": message})
}

var validate = validator.New()

func validEmail(email string) bool {
	return validate.Var(email, "required,email") == nil
}

// HealthCheck 处理健康检查。
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "healthy"})
}

// SignUp 处理注册请求，成功后直接建立会话并种下 cookie。
func (h *Handler) SignUp(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "invalid payload")
		return
	}
	if !validEmail(req.Email) {
		apiError(c, http.StatusBadRequest, "not a valid email")
		return
	}
	if len(req.Password) < 6 {
		apiError(c, http.StatusBadRequest, "password too short")
		return
	}
	user, err := h.userSvc.SignUp(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			apiError(c, http.StatusConflict, "email already in use")
			return
		}
		log.Error().Err(err).Str("email", req.Email).Msg("sign up")
		apiError(c, http.StatusInternalServerError, "failed to create user")
		return
	}
	token, err := auth.GenerateSessionToken(user.ID, user.Email, h.cfg.JWTSecret, h.cfg.SessionTTLHours)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("sign up issue token")
		apiError(c, http.StatusInternalServerError, "failed to create user")
		return
	}
	auth.SetSessionCookie(c, h.cfg, token)
	c.JSON(http.StatusOK, gin.H{"id": user.ID, "email": user.Email})
}

// Me 报告当前会话身份。没有有效会话不算错误，返回 200 null。
func (h *Handler) Me(c *gin.Context) {
	claims := auth.SessionFromCookie(c, h.cfg)
	if claims == nil {
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": claims.UserID, "email": claims.Email})
}

// LogIn 处理登录请求。
func (h *Handler) LogIn(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Email == "" || req.Password == "" {
		apiError(c, http.StatusBadRequest, "invalid payload")
		return
	}
	user, token, err := h.userSvc.SignIn(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			apiError(c, http.StatusUnauthorized, "invalid email/password")
			return
		}
		log.Error().Err(err).Str("email", req.Email).Msg("log in")
		apiError(c, http.StatusInternalServerError, "login failed")
		return
	}
	auth.SetSessionCookie(c, h.cfg, token)
	c.JSON(http.StatusOK, gin.H{"id": user.ID, "email": user.Email})
}

// LogOut 清除会话 cookie，无状态，总是成功。
func (h *Handler) LogOut(c *gin.Context) {
	auth.ClearSessionCookie(c, h.cfg)
	c.JSON(http.StatusOK, gin.H{"message": "You are now logged out."})
}

// GetProgram 按 id 读取程序，无需登录。
func (h *Handler) GetProgram(c *gin.Context) {
	program, err := h.programSvc.GetByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrProgramNotFound) {
			apiError(c, http.StatusNotFound, "program not found")
			return
		}
		log.Error().Err(err).Str("program_id", c.Param("id")).Msg("get program")
		apiError(c, http.StatusInternalServerError, "failed to get program")
		return
	}
	c.JSON(http.StatusOK, program)
}

// ListPrograms 返回当前用户拥有的全部程序。
func (h *Handler) ListPrograms(c *gin.Context) {
	user := auth.CurrentUser(c)
	programs, err := h.programSvc.ListByUser(user.UserID)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.UserID).Msg("list programs")
		apiError(c, http.StatusInternalServerError, "failed to list programs")
		return
	}
	c.JSON(http.StatusOK, programs)
}

// CreateProgram 新建程序，拥有者强制为当前用户。
func (h *Handler) CreateProgram(c *gin.Context) {
	var req struct {
		Title          string `json:"title"`
		VertexSource   string `json:"vertexSource"`
		FragmentSource string `json:"fragmentSource"`
		DidCompile     bool   `json:"didCompile"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "invalid payload")
		return
	}
	user := auth.CurrentUser(c)
	program, err := h.programSvc.Create(user.UserID, service.ProgramAttrs{
		Title:          req.Title,
		VertexSource:   req.VertexSource,
		FragmentSource: req.FragmentSource,
		DidCompile:     req.DidCompile,
	})
	if err != nil {
		log.Error().Err(err).Str("user_id", user.UserID).Msg("create program")
		apiError(c, http.StatusInternalServerError, "failed to create program")
		return
	}
	metrics.ProgramsCreatedTotal.Inc()
	c.JSON(http.StatusOK, program)
}

// UpdateProgram 对程序做部分更新，只有拥有者可以改。
func (h *Handler) UpdateProgram(c *gin.Context) {
	var req struct {
		Title          *string `json:"title"`
		VertexSource   *string `json:"vertexSource"`
		FragmentSource *string `json:"fragmentSource"`
		DidCompile     *bool   `json:"didCompile"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "invalid payload")
		return
	}
	user := auth.CurrentUser(c)
	program, err := h.programSvc.Update(c.Param("id"), user.UserID, service.ProgramPatch{
		Title:          req.Title,
		VertexSource:   req.VertexSource,
		FragmentSource: req.FragmentSource,
		DidCompile:     req.DidCompile,
	})
	if err != nil {
		h.programWriteError(c, err, "update program")
		return
	}
	metrics.ProgramsSavedTotal.Inc()
	c.JSON(http.StatusOK, program)
}

// DeleteProgram 删除程序并返回被删除的记录。
func (h *Handler) DeleteProgram(c *gin.Context) {
	user := auth.CurrentUser(c)
	program, err := h.programSvc.Delete(c.Param("id"), user.UserID)
	if err != nil {
		h.programWriteError(c, err, "delete program")
		return
	}
	c.JSON(http.StatusOK, program)
}

// programWriteError 把写操作的业务错误映射为 404/403/500。
// 存在性检查先于所有权检查，所以不存在的 id 一律是 404。
func (h *Handler) programWriteError(c *gin.Context, err error, op string) {
	switch {
	case errors.Is(err, service.ErrProgramNotFound):
		apiError(c, http.StatusNotFound, "program not found")
	case errors.Is(err, service.ErrNotOwner):
		apiError(c, http.StatusForbidden, "not the program owner")
	default:
		log.Error().Err(err).Str("program_id", c.Param("id")).Msg(op)
		apiError(c, http.StatusInternalServerError, "internal server error")
	}
}

// Diagnostics 把编译错误列表换算成编辑器 marker/annotation。
func (h *Handler) Diagnostics(c *gin.Context) {
	var req struct {
		Source string                     `json:"source"`
		Errors []diagnostics.CompileError `json:"errors"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "invalid payload")
		return
	}
	markers, annotations := diagnostics.Collect(req.Source, req.Errors)
	c.JSON(http.StatusOK, gin.H{"markers": markers, "annotations": annotations})
}
