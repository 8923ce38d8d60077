package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"jobportal/internal/api/middleware"
	"jobportal/internal/auth"
	"jobportal/internal/database"
	"jobportal/internal/metrics"
)

const (
	msgSomethingMissing   = "Something is missing"
	msgInvalidCredentials = "Incorrect email or password."
	msgEmailTaken         = "User already exists with this email."
)

// CookieOptions 控制会话 Cookie 的 Domain 与 Secure 属性。
type CookieOptions struct {
	Domain string
	Secure bool
}

// UserHandler 处理注册、登录、退出与资料更新。
type UserHandler struct {
	db          *gorm.DB
	authService *auth.AuthService
	uploader    *Uploader
	throttle    *LoginThrottle
	logger      *slog.Logger
	cookie      CookieOptions
}

// NewUserHandler 构造用户处理器。throttle 可以为 nil。
func NewUserHandler(db *gorm.DB, authService *auth.AuthService, uploader *Uploader, throttle *LoginThrottle, logger *slog.Logger, cookie CookieOptions) *UserHandler {
	return &UserHandler{
		db:          db,
		authService: authService,
		uploader:    uploader,
		throttle:    throttle,
		logger:      logger,
		cookie:      cookie,
	}
}

type registerRequest struct {
	Fullname    string `form:"fullname" json:"fullname" binding:"required"`
	Email       string `form:"email" json:"email" binding:"required"`
	PhoneNumber string `form:"phoneNumber" json:"phoneNumber" binding:"required"`
	Password    string `form:"password" json:"password" binding:"required"`
	Role        string `form:"role" json:"role" binding:"required"`
}

func validRole(role string) bool {
	return role == database.RoleStudent || role == database.RoleRecruiter
}

// Register 创建账号，头像（avatar 字段）可选。
func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindRequest(c, &req, msgSomethingMissing) {
		return
	}
	req.Fullname = strings.TrimSpace(req.Fullname)
	req.Email = strings.TrimSpace(req.Email)
	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	if blank(req.Fullname, req.Email, req.PhoneNumber) {
		BadRequest(c, msgSomethingMissing)
		return
	}
	if !validRole(req.Role) {
		BadRequest(c, "Invalid role.")
		return
	}

	ctx := c.Request.Context()
	logger := loggerFor(c, h.logger).With(slog.String("email", req.Email))

	var count int64
	if err := h.db.WithContext(ctx).Model(&database.User{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		logger.Error("register lookup failed", slog.Any("error", err))
		Internal(c)
		return
	}
	if count > 0 {
		logger.Info("register conflict: email already registered")
		BadRequest(c, msgEmailTaken)
		return
	}

	hashed, err := h.authService.HashPassword(req.Password)
	if err != nil {
		logger.Error("hash password failed", slog.Any("error", err))
		Internal(c)
		return
	}

	user := database.User{
		Fullname:     req.Fullname,
		Email:        req.Email,
		PhoneNumber:  req.PhoneNumber,
		PasswordHash: hashed,
		Role:         req.Role,
	}

	var uploadErr error
	err = h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		photo, err := h.uploader.FromForm(c, "avatar", kindAvatar, user.ID)
		if err != nil {
			uploadErr = err
			return err
		}
		if photo == nil {
			return nil
		}
		user.Profile.ProfilePhotoURL = photo.URL
		return tx.Model(&user).Update("profile_profile_photo_url", photo.URL).Error
	})
	switch {
	case err == nil:
	case uploadErr != nil:
		writeUploadError(c, logger, uploadErr)
		return
	case errors.Is(err, gorm.ErrDuplicatedKey):
		BadRequest(c, msgEmailTaken)
		return
	default:
		logger.Error("create user failed", slog.Any("error", err))
		Internal(c)
		return
	}

	logger.Info("user registered", slog.Uint64("user_id", uint64(user.ID)), slog.String("role", user.Role))
	Created(c, "Account created successfully.", nil)
}

type loginRequest struct {
	Email    string `form:"email" json:"email" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
	Role     string `form:"role" json:"role" binding:"required"`
}

// Login 校验邮箱、口令与角色，成功后写入会话 Cookie。
func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindRequest(c, &req, msgSomethingMissing) {
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
		BadRequest(c, msgSomethingMissing)
		return
	}

	ctx := c.Request.Context()
	logger := loggerFor(c, h.logger).With(slog.String("email", req.Email))

	if !h.throttle.Allow(ctx, c.ClientIP(), req.Email) {
		metrics.ObserveLogin(metrics.ResultThrottled)
		Error(c, http.StatusTooManyRequests, "Too many login attempts. Please try again later.")
		return
	}

	var user database.User
	if err := h.db.WithContext(ctx).Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Info("login failed: user not found")
			h.rejectLogin(c, req.Email)
			return
		}
		logger.Error("login query failed", slog.Any("error", err))
		Internal(c)
		return
	}

	// 未知邮箱、口令错误、角色不符返回同一条消息。
	if !h.authService.CheckPasswordHash(req.Password, user.PasswordHash) {
		logger.Info("login failed: password mismatch", slog.Uint64("user_id", uint64(user.ID)))
		h.rejectLogin(c, req.Email)
		return
	}
	if req.Role != user.Role {
		logger.Info("login failed: role mismatch", slog.Uint64("user_id", uint64(user.ID)))
		h.rejectLogin(c, req.Email)
		return
	}

	token, err := h.authService.GenerateToken(user.ID)
	if err != nil {
		logger.Error("generate token failed", slog.Any("error", err))
		Internal(c)
		return
	}

	h.throttle.Reset(ctx, req.Email)
	metrics.ObserveLogin(metrics.ResultOK)
	h.setSessionCookie(c, token, h.authService.TokenTTL())
	OK(c, fmt.Sprintf("Welcome back %s", user.Fullname), gin.H{"user": newUserResponse(user)})
}

func (h *UserHandler) rejectLogin(c *gin.Context, email string) {
	h.throttle.Fail(c.Request.Context(), email)
	metrics.ObserveLogin(metrics.ResultRejected)
	BadRequest(c, msgInvalidCredentials)
}

// Logout 立即使会话 Cookie 过期。
func (h *UserHandler) Logout(c *gin.Context) {
	h.clearSessionCookie(c)
	OK(c, "Logout successfully", nil)
}

type profilePatch struct {
	Fullname    *string `form:"fullname" json:"fullname"`
	Email       *string `form:"email" json:"email"`
	PhoneNumber *string `form:"phoneNumber" json:"phoneNumber"`
	Bio         *string `form:"bio" json:"bio"`
	Skills      *string `form:"skills" json:"skills"`
}

// apply merges the non-empty fields into user.
func (p profilePatch) apply(user *database.User) {
	if v := trimmed(p.Fullname); v != "" {
		user.Fullname = v
	}
	if v := trimmed(p.Email); v != "" {
		user.Email = v
	}
	if v := trimmed(p.PhoneNumber); v != "" {
		user.PhoneNumber = v
	}
	if v := trimmed(p.Bio); v != "" {
		user.Profile.Bio = v
	}
	if v := trimmed(p.Skills); v != "" {
		user.Profile.Skills = splitCSV(v)
	}
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// UpdateProfile 合并资料字段，可附带 resume 与 avatar 文件。
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		Unauthorized(c)
		return
	}

	var patch profilePatch
	if err := c.ShouldBind(&patch); err != nil {
		BadRequest(c, "Invalid profile data.")
		return
	}

	ctx := c.Request.Context()
	logger := loggerFor(c, h.logger).With(slog.Uint64("user_id", uint64(userID)))

	var user database.User
	if err := h.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "User not found.")
			return
		}
		logger.Error("load user failed", slog.Any("error", err))
		Internal(c)
		return
	}

	previousEmail := user.Email
	patch.apply(&user)
	if user.Email != previousEmail {
		var count int64
		if err := h.db.WithContext(ctx).Model(&database.User{}).
			Where("email = ? AND id <> ?", user.Email, user.ID).Count(&count).Error; err != nil {
			logger.Error("email lookup failed", slog.Any("error", err))
			Internal(c)
			return
		}
		if count > 0 {
			BadRequest(c, msgEmailTaken)
			return
		}
	}

	var replaced []string
	resume, err := h.uploader.FromForm(c, "resume", kindResume, user.ID)
	if writeUploadError(c, logger, err) {
		return
	}
	if resume != nil {
		replaced = append(replaced, user.Profile.ResumeURL)
		user.Profile.ResumeURL = resume.URL
		user.Profile.ResumeOriginalName = resume.OriginalName
	}

	avatar, err := h.uploader.FromForm(c, "avatar", kindAvatar, user.ID)
	if writeUploadError(c, logger, err) {
		return
	}
	if avatar != nil {
		replaced = append(replaced, user.Profile.ProfilePhotoURL)
		user.Profile.ProfilePhotoURL = avatar.URL
	}

	if err := h.db.WithContext(ctx).Save(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			BadRequest(c, msgEmailTaken)
			return
		}
		logger.Error("save profile failed", slog.Any("error", err))
		Internal(c)
		return
	}

	for _, old := range replaced {
		h.uploader.Discard(ctx, logger, old)
	}

	OK(c, "Profile updated successfully.", gin.H{"user": newUserResponse(user)})
}

func (h *UserHandler) setSessionCookie(c *gin.Context, token string, ttl time.Duration) {
	cookie := h.sessionCookie(c, token, int(ttl.Seconds()))
	cookie.Expires = time.Now().Add(ttl)
	http.SetCookie(c.Writer, cookie)
}

// clearSessionCookie 输出 Max-Age=0，浏览器会立即删除 Cookie。
func (h *UserHandler) clearSessionCookie(c *gin.Context) {
	http.SetCookie(c.Writer, h.sessionCookie(c, "", -1))
}

func (h *UserHandler) sessionCookie(c *gin.Context, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    value,
		MaxAge:   maxAge,
		Path:     "/",
		Domain:   strings.TrimSpace(h.cookie.Domain),
		Secure:   h.cookie.Secure || isHTTPSRequest(c),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
}

func isHTTPSRequest(c *gin.Context) bool {
	if c.Request == nil {
		return false
	}
	if c.Request.TLS != nil {
		return true
	}
	return strings.EqualFold(c.Request.Header.Get("X-Forwarded-Proto"), "https")
}
