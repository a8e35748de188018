package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmmdmlingbakery/mdm-ling-audit/app/audit"
	"github.com/dmmdmlingbakery/mdm-ling-audit/app/feed"
)

func NewHandler(auditor AuditorInterface, version, cacheBackend string) *Handler {
	return &Handler{
		auditor:      auditor,
		version:      version,
		cacheBackend: cacheBackend,
	}
}

func (h *Handler) RunAudit(c *gin.Context) {
	report, err := h.auditor.Run(c.Request.Context())
	if err != nil {
		status := auditErrorStatus(err)
		if status == http.StatusInternalServerError {
			slog.Error("Audit error", "url", h.auditor.FeedURL(), "error", err)
		}
		c.JSON(status, gin.H{
			"error":   http.StatusText(status),
			"details": err.Error(),
		})
		return
	}

	setReportHeaders(c, report)
	c.JSON(http.StatusOK, report)
}

func (h *Handler) GetLatestAudit(c *gin.Context) {
	report, ok := h.auditor.Latest()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "No audit has run yet"})
		return
	}

	setReportHeaders(c, report)
	c.JSON(http.StatusOK, report)
}

func (h *Handler) ClearCache(c *gin.Context) {
	if err := h.auditor.ClearCache(c.Request.Context()); err != nil {
		slog.Error("Cache error", "operation", "clear", "url", h.auditor.FeedURL(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to clear feed cache",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Feed cache cleared",
		"url":     h.auditor.FeedURL(),
	})
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp":     time.Now().In(time.Local).Format(time.RFC3339),
		"cache_backend": h.cacheBackend,
	}

	if report, ok := h.auditor.Latest(); ok {
		health["last_audit_at"] = report.GeneratedAt.Format(time.RFC3339)
	}

	c.JSON(http.StatusOK, health)
}

func auditErrorStatus(err error) int {
	switch {
	case errors.Is(err, audit.ErrAuditInProgress):
		return http.StatusConflict
	case errors.Is(err, feed.ErrNetworkFailure):
		return http.StatusBadGateway
	case errors.Is(err, feed.ErrMalformedFeed):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func setReportHeaders(c *gin.Context, report *audit.Report) {
	c.Header("X-Audit-ID", report.ID)
	c.Header("X-Audit-Products", strconv.Itoa(report.Summary.Total))
	c.Header("X-Audit-Generated", report.GeneratedAt.Format(time.RFC3339))
}
