// Package handler exposes the live actions and the control plane webhook over HTTP (gin).
package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"teatime-live/internal/live/domain"
	"teatime-live/internal/live/service"
	"teatime-live/internal/live/webhook"
	"teatime-live/internal/server/middleware"
)

// maxWebhookBody bounds the webhook payload read into memory.
const maxWebhookBody = 1 << 20

// LiveService is the orchestrator surface the HTTP handler drives.
type LiveService interface {
	Open(ctx context.Context, actor domain.Actor, boardID int64) (*domain.Credential, error)
	IsOpen(ctx context.Context, actor domain.Actor, boardID int64) (bool, error)
	Join(ctx context.Context, actor domain.Actor, boardID int64) (*domain.Credential, error)
	Kick(ctx context.Context, actor domain.Actor, boardID int64, targetID string) error
	Mute(ctx context.Context, actor domain.Actor, boardID int64, req service.MuteRequest) error
	Close(ctx context.Context, actor domain.Actor, boardID int64) error
}

// WebhookReceiver handles a raw webhook delivery. *webhook.Reconciler implements it.
type WebhookReceiver interface {
	Handle(ctx context.Context, body []byte, authHeader string) webhook.Outcome
}

// Handler serves the board live routes.
type Handler struct {
	svc       LiveService
	webhook   WebhookReceiver
	serverURL string
}

// NewHandler returns a Handler. serverURL is handed to clients alongside their credential.
func NewHandler(svc LiveService, receiver WebhookReceiver, serverURL string) *Handler {
	return &Handler{svc: svc, webhook: receiver, serverURL: serverURL}
}

// RegisterRoutes mounts the live routes on r. auth guards every route except the webhook.
func (h *Handler) RegisterRoutes(r gin.IRouter, auth gin.HandlerFunc) {
	lives := r.Group("/api/v1/boards/:boardId/lives", auth)
	lives.GET("", h.isOpen)
	lives.POST("", h.open)
	lives.POST("/token", h.join)
	lives.POST("/kick", h.kick)
	lives.POST("/mute", h.mute)
	lives.DELETE("", h.close)

	r.POST("/api/v1/lives/webhook", h.receiveWebhook)
}

type credentialResponse struct {
	SessionID string `json:"sessionId"`
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
	ServerURL string `json:"serverUrl"`
}

type kickRequest struct {
	UserID string `json:"userId"`
}

type muteRequest struct {
	UserID   string `json:"userId"`
	TrackSID string `json:"trackSid"`
	IsMute   bool   `json:"isMute"`
}

func (h *Handler) isOpen(c *gin.Context) {
	actor, boardID, ok := parseRequest(c)
	if !ok {
		return
	}
	open, err := h.svc.IsOpen(c.Request.Context(), actor, boardID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"isOpen": open}})
}

func (h *Handler) open(c *gin.Context) {
	actor, boardID, ok := parseRequest(c)
	if !ok {
		return
	}
	cred, err := h.svc.Open(c.Request.Context(), actor, boardID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": h.credential(cred)})
}

func (h *Handler) join(c *gin.Context) {
	actor, boardID, ok := parseRequest(c)
	if !ok {
		return
	}
	cred, err := h.svc.Join(c.Request.Context(), actor, boardID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": h.credential(cred)})
}

func (h *Handler) kick(c *gin.Context) {
	actor, boardID, ok := parseRequest(c)
	if !ok {
		return
	}
	var req kickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// Ownership is checked before the target, so a bad body still reaches the service.
		req = kickRequest{}
	}
	if err := h.svc.Kick(c.Request.Context(), actor, boardID, req.UserID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"userId": req.UserID}})
}

func (h *Handler) mute(c *gin.Context) {
	actor, boardID, ok := parseRequest(c)
	if !ok {
		return
	}
	var req muteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// Ownership is checked before the target, so a bad body still reaches the service.
		req = muteRequest{}
	}
	err := h.svc.Mute(c.Request.Context(), actor, boardID, service.MuteRequest{
		UserID:   req.UserID,
		TrackSID: req.TrackSID,
		Muted:    req.IsMute,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": req})
}

func (h *Handler) close(c *gin.Context) {
	actor, boardID, ok := parseRequest(c)
	if !ok {
		return
	}
	if err := h.svc.Close(c.Request.Context(), actor, boardID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// receiveWebhook always answers 200 so the control plane does not retry; outcomes are logged and counted.
func (h *Handler) receiveWebhook(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		c.Status(http.StatusOK)
		return
	}
	h.webhook.Handle(c.Request.Context(), body, c.GetHeader("Authorization"))
	c.Status(http.StatusOK)
}

func (h *Handler) credential(cred *domain.Credential) credentialResponse {
	return credentialResponse{
		SessionID: cred.SessionID,
		Token:     cred.Token,
		ExpiresAt: cred.ExpiresAt.UTC().Format(time.RFC3339),
		ServerURL: h.serverURL,
	}
}

// parseRequest reads the actor from the request context and the board id from the path.
// It writes the error response and returns false when either is missing.
func parseRequest(c *gin.Context) (domain.Actor, int64, bool) {
	userID, _ := middleware.GetUserID(c.Request.Context())
	if userID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody("UNAUTHENTICATED", "", "", "missing or invalid authorization"))
		return domain.Actor{}, 0, false
	}
	name, _ := middleware.GetDisplayName(c.Request.Context())
	boardID, err := strconv.ParseInt(c.Param("boardId"), 10, 64)
	if err != nil || boardID <= 0 {
		writeError(c, fmt.Errorf("%w: boardId must be a positive integer", domain.ErrInvalidArgument))
		return domain.Actor{}, 0, false
	}
	return domain.Actor{ID: userID, DisplayName: name}, boardID, true
}
