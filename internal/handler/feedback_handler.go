package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/John-Sie/YangBeiKTV/internal/domain"
	"github.com/John-Sie/YangBeiKTV/internal/service"
	"github.com/John-Sie/YangBeiKTV/pkg/httputil"
)

type feedbackRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Type    string `json:"type" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// SubmitFeedback 提交反馈，可匿名
func (h *Handler) SubmitFeedback(c *gin.Context) {
	var req feedbackRequest
	if err := httputil.BindAndValidate(c, &req); err != nil {
		handleError(c, err)
		return
	}
	user, err := h.currentUser(c)
	if err != nil {
		// 令牌对应的账号已不存在时按匿名处理
		user = nil
	}

	fb, err := h.Feedbacks.Submit(c.Request.Context(), user, service.FeedbackInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Type:    domain.FeedbackType(req.Type),
		Content: req.Content,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	httputil.CreatedResponse(c, fb)
}
