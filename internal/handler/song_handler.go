package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/John-Sie/YangBeiKTV/internal/classifier"
	"github.com/John-Sie/YangBeiKTV/internal/domain"
	"github.com/John-Sie/YangBeiKTV/internal/middleware"
	"github.com/John-Sie/YangBeiKTV/internal/transfer"
	apperrors "github.com/John-Sie/YangBeiKTV/pkg/errors"
	"github.com/John-Sie/YangBeiKTV/pkg/httputil"
)

// maxImportSize 导入文件大小上限
const maxImportSize = 10 << 20

type songRequest struct {
	Title    string   `json:"title" binding:"required"`
	Artist   string   `json:"artist"`
	Language string   `json:"language"`
	Tags     []string `json:"tags"`
}

// SearchSongs 搜索可点歌曲 ?q=&language=
func (h *Handler) SearchSongs(c *gin.Context) {
	httputil.SuccessResponse(c, h.Catalog.Search(c.Query("q"), c.Query("language")))
}

// Languages 语言列表
func (h *Handler) Languages(c *gin.Context) {
	httputil.SuccessResponse(c, h.Catalog.Languages())
}

// SongStats 单曲点播次数，登录时附带个人次数
func (h *Handler) SongStats(c *gin.Context) {
	httputil.SuccessResponse(c, h.Stats.SongStats(c.Param("id"), middleware.GetUserID(c)))
}

// Singers 分类歌手 ?category=Male&length=3
func (h *Handler) Singers(c *gin.Context) {
	cat, ok := classifier.ParseCategory(c.DefaultQuery("category", string(classifier.Male)))
	if !ok {
		handleError(c, apperrors.ErrValidationFailed.WithMessage("unknown singer category"))
		return
	}
	length, _ := strconv.Atoi(c.Query("length"))
	httputil.SuccessResponse(c, h.Catalog.Singers(cat, length))
}

// SingerCounts 各分类歌手数
func (h *Handler) SingerCounts(c *gin.Context) {
	httputil.SuccessResponse(c, h.Catalog.SingerCounts())
}

// SongsByArtist 歌手的歌
func (h *Handler) SongsByArtist(c *gin.Context) {
	httputil.SuccessResponse(c, h.Catalog.SongsByArtist(c.Param("name")))
}

// AllSongs 管理后台：全部歌曲含已下架
func (h *Handler) AllSongs(c *gin.Context) {
	httputil.SuccessResponse(c, h.Catalog.All())
}

// UpsertSong 新增或覆盖歌曲，歌号取自路径
func (h *Handler) UpsertSong(c *gin.Context) {
	var req songRequest
	if err := httputil.BindAndValidate(c, &req); err != nil {
		handleError(c, err)
		return
	}

	song := &domain.Song{
		ID:       c.Param("id"),
		Title:    req.Title,
		Artist:   req.Artist,
		Language: req.Language,
		Tags:     req.Tags,
	}
	if existing, ok := h.Board.Song(song.ID); ok {
		song.AddedAt = existing.AddedAt
		song.IsDeleted = existing.IsDeleted
	}
	if song.Tags == nil {
		song.Tags = []string{}
	}

	if err := h.Catalog.Upsert(c.Request.Context(), song); err != nil {
		handleError(c, err)
		return
	}
	httputil.SuccessResponse(c, song)
}

// ImportSongs 上传 CSV/XLSX 批量导入，表单字段 file
func (h *Handler) ImportSongs(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		handleError(c, apperrors.ErrInvalidInput.WithMessage("file is required"))
		return
	}
	if fh.Size > maxImportSize {
		handleError(c, apperrors.ErrInvalidInput.WithMessage("file too large"))
		return
	}
	format, err := transfer.FormatFromFilename(fh.Filename)
	if err != nil {
		handleError(c, err)
		return
	}

	f, err := fh.Open()
	if err != nil {
		handleError(c, err)
		return
	}
	defer f.Close()

	rows, err := transfer.ParseSongs(format, f, time.Now().UTC())
	if err != nil {
		handleError(c, apperrors.ErrInvalidFormat.WithError(err).WithDetails(err.Error()))
		return
	}
	httputil.SuccessResponse(c, h.Catalog.ImportSongs(c.Request.Context(), rows))
}

// SoftDeleteSong 下架
func (h *Handler) SoftDeleteSong(c *gin.Context) {
	if err := h.Catalog.SoftDelete(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	httputil.SuccessResponse(c, gin.H{"id": c.Param("id"), "is_deleted": true})
}

// RestoreSong 恢复
func (h *Handler) RestoreSong(c *gin.Context) {
	if err := h.Catalog.Restore(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	httputil.SuccessResponse(c, gin.H{"id": c.Param("id"), "is_deleted": false})
}
