package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"shortlink-service/internal/model"
	"shortlink-service/internal/shortener"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ShortLinkHandler 短链接处理器
type ShortLinkHandler struct {
	svc     *shortener.Service
	baseURL string
	logger  *zap.SugaredLogger
}

// NewShortLinkHandler 创建处理器实例，baseURL 为空时使用请求的 Host
func NewShortLinkHandler(svc *shortener.Service, baseURL string, logger *zap.SugaredLogger) *ShortLinkHandler {
	return &ShortLinkHandler{
		svc:     svc,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger.Named("handler"),
	}
}

// HealthCheck 健康检查
func (h *ShortLinkHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now()})
}

// CreateShortLinkRequest 创建短链接请求
type CreateShortLinkRequest struct {
	URL         string     `json:"url" binding:"required,url" example:"https://github.com/gin-gonic/gin"`
	CustomAlias string     `json:"custom_alias,omitempty" example:"docs"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty" example:"2030-01-01T00:00:00Z"`
}

// ShortLinkResponse 短链接信息
type ShortLinkResponse struct {
	Code          string     `json:"code" example:"aZ3k9Q"`
	ShortURL      string     `json:"short_url" example:"http://localhost:8080/aZ3k9Q"`
	LongURL       string     `json:"long_url" example:"https://github.com/gin-gonic/gin"`
	Clicks        int64      `json:"clicks" example:"0"`
	IsCustomAlias bool       `json:"is_custom_alias"`
	Expired       bool       `json:"expired"`
	CreatedAt     time.Time  `json:"created_at"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
}

// ListResponse 链接列表
type ListResponse struct {
	Page  int                 `json:"page"`
	Limit int                 `json:"limit"`
	Links []ShortLinkResponse `json:"links"`
}

// CreateShortLink godoc
// @Summary 创建短链接
// @Description 为一个长 URL 创建短链接，可指定自定义别名与过期时间
// @Tags ShortLink
// @Accept  json
// @Produce  json
// @Param   body  body   CreateShortLinkRequest  true  "长链接 URL"
// @Success 201 {object} ShortLinkResponse "成功响应"
// @Failure 400 {object} map[string]string "请求无效"
// @Failure 409 {object} map[string]string "别名已被占用"
// @Failure 503 {object} map[string]string "暂时无法分配"
// @Router /api/shorten [post]
func (h *ShortLinkHandler) CreateShortLink(c *gin.Context) {
	var req CreateShortLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求数据: " + err.Error()})
		return
	}

	link, err := h.svc.Shorten(c.Request.Context(), shortener.ShortenRequest{
		LongURL:     req.URL,
		CustomAlias: req.CustomAlias,
		ExpiresAt:   req.ExpiresAt,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, h.toResponse(c, link))
}

// RedirectToOriginal godoc
// @Summary 短链接跳转
// @Tags ShortLink
// @Param   code  path  string  true  "短码"
// @Success 302
// @Failure 404 {object} map[string]string "链接不存在"
// @Failure 410 {object} map[string]string "链接已过期"
// @Router /{code} [get]
func (h *ShortLinkHandler) RedirectToOriginal(c *gin.Context) {
	longURL, err := h.svc.Resolve(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Redirect(http.StatusFound, longURL)
}

// GetLinkStats godoc
// @Summary 查询短链接统计
// @Description 返回完整记录，不计入点击
// @Tags ShortLink
// @Produce  json
// @Param   code  path  string  true  "短码"
// @Success 200 {object} ShortLinkResponse
// @Failure 404 {object} map[string]string "链接不存在"
// @Router /api/stats/{code} [get]
func (h *ShortLinkHandler) GetLinkStats(c *gin.Context) {
	link, err := h.svc.Stats(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.toResponse(c, link))
}

// GetAllLinks godoc
// @Summary 分页列出短链接
// @Tags Admin
// @Security ApiKeyAuth
// @Produce  json
// @Param   page   query  int  false  "页码"
// @Param   limit  query  int  false  "每页数量"
// @Success 200 {object} ListResponse
// @Router /api/links [get]
func (h *ShortLinkHandler) GetAllLinks(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	links, err := h.svc.List(c.Request.Context(), limit, (page-1)*limit)
	if err != nil {
		h.writeError(c, err)
		return
	}
	resp := ListResponse{Page: page, Limit: limit, Links: make([]ShortLinkResponse, 0, len(links))}
	for i := range links {
		resp.Links = append(resp.Links, h.toResponse(c, &links[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// GetSummary godoc
// @Summary 全局统计
// @Tags Admin
// @Security ApiKeyAuth
// @Produce  json
// @Success 200 {object} store.Summary
// @Router /api/summary [get]
func (h *ShortLinkHandler) GetSummary(c *gin.Context) {
	sum, err := h.svc.Summary(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

// DeleteLink godoc
// @Summary 删除短链接
// @Tags Admin
// @Security ApiKeyAuth
// @Param   code  path  string  true  "短码"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string "链接不存在"
// @Router /api/links/{code} [delete]
func (h *ShortLinkHandler) DeleteLink(c *gin.Context) {
	if err := h.svc.Remove(c.Request.Context(), c.Param("code")); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "删除成功"})
}

func (h *ShortLinkHandler) toResponse(c *gin.Context, link *model.ShortLink) ShortLinkResponse {
	base := h.baseURL
	if base == "" {
		base = "http://" + c.Request.Host
	}
	return ShortLinkResponse{
		Code:          link.Code,
		ShortURL:      base + "/" + link.Code,
		LongURL:       link.LongURL,
		Clicks:        link.Clicks,
		IsCustomAlias: link.IsCustomAlias,
		Expired:       h.svc.Expired(link),
		CreatedAt:     link.CreatedAt,
		ExpiresAt:     link.ExpiresAt,
	}
}

// writeError 将核心错误映射为稳定的 HTTP 状态码
func (h *ShortLinkHandler) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	msg := "服务器内部错误"
	switch {
	case errors.Is(err, shortener.ErrInvalidRequest):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, shortener.ErrAliasConflict):
		status, msg = http.StatusConflict, "别名已被占用"
	case errors.Is(err, shortener.ErrNotFound):
		status, msg = http.StatusNotFound, "链接不存在"
	case errors.Is(err, shortener.ErrExpired):
		status, msg = http.StatusGone, "链接已过期"
	case errors.Is(err, shortener.ErrAllocationExhausted):
		status, msg = http.StatusServiceUnavailable, "暂时无法分配短码，请稍后重试"
	case errors.Is(err, shortener.ErrStoreUnavailable):
		status, msg = http.StatusServiceUnavailable, "存储暂时不可用，请稍后重试"
	case errors.Is(err, shortener.ErrUnsupported):
		status, msg = http.StatusNotImplemented, "当前存储后端不支持该操作"
	}
	if status >= http.StatusInternalServerError {
		h.logger.Errorw("请求失败", "path", c.Request.URL.Path, "error", err)
	}
	c.JSON(status, gin.H{"error": msg})
}
