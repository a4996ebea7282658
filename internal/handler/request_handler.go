package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/John-Sie/YangBeiKTV/internal/ranking"
	"github.com/John-Sie/YangBeiKTV/internal/service"
	apperrors "github.com/John-Sie/YangBeiKTV/pkg/errors"
	"github.com/John-Sie/YangBeiKTV/pkg/httputil"
)

type submitRequest struct {
	SongID   string `json:"song_id" binding:"required"`
	KeyShift *int   `json:"key_shift"`
}

// Queue 当前队列
func (h *Handler) Queue(c *gin.Context) {
	httputil.SuccessResponse(c, h.Requests.Queue())
}

// Submit 点歌
func (h *Handler) Submit(c *gin.Context) {
	var req submitRequest
	if err := httputil.BindAndValidate(c, &req); err != nil {
		handleError(c, err)
		return
	}
	user, ok := h.mustUser(c)
	if !ok {
		return
	}

	var opts []service.SubmitOption
	if req.KeyShift != nil {
		opts = append(opts, service.WithKeyShift(*req.KeyShift))
	}
	created, err := h.Requests.SubmitByID(c.Request.Context(), req.SongID, user, opts...)
	if err != nil {
		handleError(c, err)
		return
	}
	httputil.CreatedResponse(c, created)
}

// Cancel 取消点歌
func (h *Handler) Cancel(c *gin.Context) {
	user, ok := h.mustUser(c)
	if !ok {
		return
	}
	if err := h.Requests.CancelOwn(c.Request.Context(), c.Param("id"), user); err != nil {
		handleError(c, err)
		return
	}
	httputil.SuccessResponse(c, gin.H{"id": c.Param("id"), "status": "cancelled"})
}

// MarkPlayed 管理员标记已唱
func (h *Handler) MarkPlayed(c *gin.Context) {
	user, ok := h.mustUser(c)
	if !ok {
		return
	}
	if err := h.Requests.MarkPlayed(c.Request.Context(), c.Param("id"), user); err != nil {
		handleError(c, err)
		return
	}
	httputil.SuccessResponse(c, gin.H{"id": c.Param("id"), "status": "played"})
}

// ToggleFavorite 收藏/取消收藏
func (h *Handler) ToggleFavorite(c *gin.Context) {
	user, ok := h.mustUser(c)
	if !ok {
		return
	}
	favorites, err := h.Requests.ToggleFavorite(c.Request.Context(), user.ID, c.Param("songId"))
	if err != nil {
		handleError(c, err)
		return
	}
	httputil.SuccessResponse(c, gin.H{"favorites": favorites})
}

// History 我的点歌记录，?sung=true 只看已唱
func (h *Handler) History(c *gin.Context) {
	user, ok := h.mustUser(c)
	if !ok {
		return
	}
	sung, _ := strconv.ParseBool(c.Query("sung"))
	rows, err := h.Stats.History(user.ID, sung)
	if err != nil {
		handleError(c, err)
		return
	}
	httputil.SuccessResponse(c, rows)
}

func limitParam(c *gin.Context) int {
	limit, _ := strconv.Atoi(c.Query("limit"))
	return limit
}

// TopSongs 热门歌曲 ?window=week|month|year
func (h *Handler) TopSongs(c *gin.Context) {
	w, ok := ranking.ParseWindow(c.DefaultQuery("window", string(ranking.Week)))
	if !ok {
		handleError(c, apperrors.ErrValidationFailed.WithMessage("window must be week, month or year"))
		return
	}
	httputil.SuccessResponse(c, h.Stats.TopSongs(w, limitParam(c)))
}

// TopSongsByLanguage 某语言热门
func (h *Handler) TopSongsByLanguage(c *gin.Context) {
	httputil.SuccessResponse(c, h.Stats.TopSongsByLanguage(c.Param("language"), limitParam(c)))
}

// TopArtists 本月热门歌手
func (h *Handler) TopArtists(c *gin.Context) {
	httputil.SuccessResponse(c, h.Stats.TopArtists(limitParam(c)))
}

// TopRequesters 点歌王
func (h *Handler) TopRequesters(c *gin.Context) {
	rows := h.Stats.TopRequesters(limitParam(c))
	type row struct {
		UserID    string `json:"user_id"`
		Name      string `json:"name"`
		Residence string `json:"residence,omitempty"`
		Count     int    `json:"count"`
	}
	out := make([]row, len(rows))
	for i, r := range rows {
		out[i] = row{UserID: r.User.ID, Name: r.User.DisplayName(), Residence: r.User.Residence(), Count: r.Count}
	}
	httputil.SuccessResponse(c, out)
}

// Dashboard 管理后台概览
func (h *Handler) Dashboard(c *gin.Context) {
	httputil.SuccessResponse(c, h.Stats.Dashboard())
}
