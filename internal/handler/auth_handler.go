package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/John-Sie/YangBeiKTV/internal/service"
	"github.com/John-Sie/YangBeiKTV/pkg/httputil"
)

type registerRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name"`
	Building string `json:"building" binding:"required"`
	Floor    string `json:"floor"`
	Door     string `json:"door"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type verifyIdentityRequest struct {
	Email    string `json:"email" binding:"required"`
	Building string `json:"building" binding:"required"`
	Floor    string `json:"floor"`
	Door     string `json:"door"`
}

type resetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

type profileRequest struct {
	Name  string `json:"name"`
	Theme string `json:"theme_preference"`
}

// Register 注册
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := httputil.BindAndValidate(c, &req); err != nil {
		handleError(c, err)
		return
	}

	user, err := h.Accounts.Register(c.Request.Context(), service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Building: req.Building,
		Floor:    req.Floor,
		Door:     req.Door,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	httputil.CreatedResponse(c, user)
}

// Login 登录
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := httputil.BindAndValidate(c, &req); err != nil {
		handleError(c, err)
		return
	}

	res, err := h.Accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handleError(c, err)
		return
	}
	httputil.SuccessResponse(c, res)
}

// VerifyIdentity 忘记密码：核对住户资料，返回重设令牌
func (h *Handler) VerifyIdentity(c *gin.Context) {
	var req verifyIdentityRequest
	if err := httputil.BindAndValidate(c, &req); err != nil {
		handleError(c, err)
		return
	}

	token, err := h.Accounts.VerifyIdentity(c.Request.Context(), req.Email, req.Building, req.Floor, req.Door)
	if err != nil {
		handleError(c, err)
		return
	}
	httputil.SuccessResponse(c, gin.H{
		"reset_token": token,
		"expires_in":  int(service.ResetTokenTTL.Seconds()),
	})
}

// ResetPassword 用重设令牌设置新密码
func (h *Handler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := httputil.BindAndValidate(c, &req); err != nil {
		handleError(c, err)
		return
	}

	if err := h.Accounts.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		handleError(c, err)
		return
	}
	httputil.SuccessResponse(c, gin.H{"message": "password updated"})
}

// Me 当前用户
func (h *Handler) Me(c *gin.Context) {
	user, ok := h.mustUser(c)
	if !ok {
		return
	}
	httputil.SuccessResponse(c, user)
}

// UpdateProfile 修改名称与主题
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req profileRequest
	if err := httputil.BindAndValidate(c, &req); err != nil {
		handleError(c, err)
		return
	}
	user, ok := h.mustUser(c)
	if !ok {
		return
	}

	updated, err := h.Accounts.UpdateProfile(c.Request.Context(), user.ID, req.Name, req.Theme)
	if err != nil {
		handleError(c, err)
		return
	}
	httputil.SuccessResponse(c, updated)
}
