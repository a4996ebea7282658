package handler

import (
	"bytes"

	"github.com/gin-gonic/gin"

	"github.com/John-Sie/YangBeiKTV/internal/domain"
	"github.com/John-Sie/YangBeiKTV/internal/service"
	"github.com/John-Sie/YangBeiKTV/internal/transfer"
	apperrors "github.com/John-Sie/YangBeiKTV/pkg/errors"
	"github.com/John-Sie/YangBeiKTV/pkg/httputil"
)

type userRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password"`
	Role        string `json:"role"`
	Name        string `json:"name"`
	Building    string `json:"building"`
	Floor       string `json:"floor"`
	Door        string `json:"door"`
	IsSuspended bool   `json:"is_suspended"`
}

func (r userRequest) input(id string) service.UserInput {
	return service.UserInput{
		ID:          id,
		Email:       r.Email,
		Password:    r.Password,
		Role:        domain.Role(r.Role),
		Name:        r.Name,
		Building:    r.Building,
		Floor:       r.Floor,
		Door:        r.Door,
		IsSuspended: r.IsSuspended,
	}
}

type suspendRequest struct {
	Suspended bool `json:"suspended"`
}

// ListUsers 用户列表
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.Accounts.ListUsers(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	httputil.SuccessResponse(c, users)
}

// CreateUser 新增用户
func (h *Handler) CreateUser(c *gin.Context) {
	h.saveUser(c, "")
}

// UpdateUser 编辑用户，密码留空不修改
func (h *Handler) UpdateUser(c *gin.Context) {
	h.saveUser(c, c.Param("id"))
}

func (h *Handler) saveUser(c *gin.Context, id string) {
	var req userRequest
	if err := httputil.BindAndValidate(c, &req); err != nil {
		handleError(c, err)
		return
	}
	operator, ok := h.mustUser(c)
	if !ok {
		return
	}

	user, err := h.Accounts.SaveUser(c.Request.Context(), operator, req.input(id))
	if err != nil {
		handleError(c, err)
		return
	}
	if id == "" {
		httputil.CreatedResponse(c, user)
		return
	}
	httputil.SuccessResponse(c, user)
}

// DeleteUser 删除用户及其点歌记录
func (h *Handler) DeleteUser(c *gin.Context) {
	operator, ok := h.mustUser(c)
	if !ok {
		return
	}
	if err := h.Accounts.DeleteUser(c.Request.Context(), operator, c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	httputil.SuccessResponse(c, gin.H{"id": c.Param("id")})
}

// SetSuspended 停权/恢复
func (h *Handler) SetSuspended(c *gin.Context) {
	var req suspendRequest
	if err := httputil.BindAndValidate(c, &req); err != nil {
		handleError(c, err)
		return
	}
	operator, ok := h.mustUser(c)
	if !ok {
		return
	}
	if err := h.Accounts.SetSuspended(c.Request.Context(), operator, c.Param("id"), req.Suspended); err != nil {
		handleError(c, err)
		return
	}
	httputil.SuccessResponse(c, gin.H{"id": c.Param("id"), "is_suspended": req.Suspended})
}

// ListFeedbacks 反馈列表
func (h *Handler) ListFeedbacks(c *gin.Context) {
	operator, ok := h.mustUser(c)
	if !ok {
		return
	}
	list, err := h.Feedbacks.List(c.Request.Context(), operator)
	if err != nil {
		handleError(c, err)
		return
	}
	httputil.SuccessResponse(c, list)
}

// DeleteFeedback 删除反馈
func (h *Handler) DeleteFeedback(c *gin.Context) {
	operator, ok := h.mustUser(c)
	if !ok {
		return
	}
	if err := h.Feedbacks.Delete(c.Request.Context(), operator, c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	httputil.SuccessResponse(c, gin.H{"id": c.Param("id")})
}

// MarkFeedbackRead 标记已读
func (h *Handler) MarkFeedbackRead(c *gin.Context) {
	operator, ok := h.mustUser(c)
	if !ok {
		return
	}
	if err := h.Feedbacks.MarkRead(c.Request.Context(), operator, c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	httputil.SuccessResponse(c, gin.H{"id": c.Param("id"), "is_read": true})
}

// Export 备份下载 /export/songs|users|feedbacks?format=csv|xlsx
func (h *Handler) Export(c *gin.Context) {
	format, err := transfer.ParseFormat(c.DefaultQuery("format", string(transfer.FormatCSV)))
	if err != nil {
		handleError(c, err)
		return
	}
	operator, ok := h.mustUser(c)
	if !ok {
		return
	}

	var table transfer.Table
	switch c.Param("table") {
	case "songs":
		table = transfer.SongsTable(h.Catalog.All())
	case "users":
		users, err := h.Accounts.ListUsers(c.Request.Context())
		if err != nil {
			handleError(c, err)
			return
		}
		table = transfer.UsersTable(users)
	case "feedbacks":
		list, err := h.Feedbacks.List(c.Request.Context(), operator)
		if err != nil {
			handleError(c, err)
			return
		}
		table = transfer.FeedbacksTable(list)
	default:
		handleError(c, apperrors.ErrNotFound.WithMessage("unknown export table"))
		return
	}

	var buf bytes.Buffer
	if err := table.Write(&buf, format); err != nil {
		handleError(c, err)
		return
	}
	httputil.Attachment(c, table.Filename(format), format.ContentType(), buf.Bytes())
}
