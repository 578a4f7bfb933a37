package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/faqbot/internal/domain/admin"
	"github.com/yanqian/faqbot/internal/domain/faq"
	"github.com/yanqian/faqbot/internal/infra/config"
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	faqSvc   faq.Service
	adminSvc admin.Service
	sessions sessionIssuer
	logger   *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(cfg *config.Config, faqSvc faq.Service, adminSvc admin.Service, logger *slog.Logger) *Handler {
	return &Handler{
		faqSvc:   faqSvc,
		adminSvc: adminSvc,
		sessions: newSessionIssuer(cfg.HTTP.Session),
		logger:   logger.With("component", "http.handler"),
	}
}

type sendMessageRequest struct {
	Message string `json:"message"`
}

type sendMessageResponse struct {
	Response string `json:"response"`
}

// Welcome returns the greeting shown when the chat opens.
func (h *Handler) Welcome(c *gin.Context) {
	c.String(http.StatusOK, h.faqSvc.Welcome())
}

// Health is the liveness probe.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "catalog": h.faqSvc.Stats().Catalog.Entries})
}

// SendMessage answers one chat message. Pipeline failures are already folded
// into the apology, so this path only fails on a malformed body.
func (h *Handler) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	sessionID := h.sessions.ensure(c)
	reply := h.faqSvc.Respond(c.Request.Context(), faq.Request{SessionID: sessionID, Message: req.Message})
	c.JSON(http.StatusOK, sendMessageResponse{Response: reply.Answer})
}

// Stats reports counters and the active catalog.
func (h *Handler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.faqSvc.Stats())
}

// AdminLogin exchanges operator credentials for a bearer token.
func (h *Handler) AdminLogin(c *gin.Context) {
	var req admin.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	resp, err := h.adminSvc.Login(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, asHTTPError(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ReloadCatalog rebuilds the catalog from its source.
func (h *Handler) ReloadCatalog(c *gin.Context) {
	info, err := h.faqSvc.Reload(c.Request.Context())
	if err != nil {
		mapped := asHTTPError(err)
		abortWithError(c, NewHTTPError(mapped.Status, "reload_failed", mapped.Message, err))
		return
	}
	if claims, ok := getClaims(c); ok {
		h.logger.Info("catalog reload requested", "by", claims.Username, "entries", info.Entries)
	}
	c.JSON(http.StatusOK, info)
}

// ClearCache drops every cached reply.
func (h *Handler) ClearCache(c *gin.Context) {
	if err := h.faqSvc.ClearCache(c.Request.Context()); err != nil {
		mapped := asHTTPError(err)
		abortWithError(c, NewHTTPError(mapped.Status, "cache_clear_failed", mapped.Message, err))
		return
	}
	c.Status(http.StatusNoContent)
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
