package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"teatime-live/internal/live/domain"
)

// Stable error codes in addition to the deny reasons.
const (
	CodeSessionExists       = "SESSION_EXISTS"
	CodeSessionNotFound     = "SESSION_NOT_FOUND"
	CodeBoardNotFound       = "BOARD_NOT_FOUND"
	CodeInvalidArgument     = "INVALID_ARGUMENT"
	CodeControlPlaneFailure = "CONTROL_PLANE_FAILURE"
	CodeInternal            = "INTERNAL"
)

// writeError maps a service error to its HTTP status and error body.
func writeError(c *gin.Context, err error) {
	status, body := mapError(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("module", "live").Str("route", c.FullPath()).Msg("unhandled live error")
	}
	c.AbortWithStatusJSON(status, body)
}

func mapError(err error) (int, gin.H) {
	var deny *domain.DenyError
	var adapter *domain.AdapterError
	switch {
	case errors.As(err, &deny):
		return http.StatusForbidden, errorBody(string(deny.Reason), string(deny.Reason), string(deny.Detail), deny.Error())
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, errorBody(CodeSessionExists, "", "", "a live is already open for this board")
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound, errorBody(CodeSessionNotFound, "", "", "no live is open for this board")
	case errors.Is(err, domain.ErrBoardNotFound):
		return http.StatusNotFound, errorBody(CodeBoardNotFound, "", "", "board not found")
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest, errorBody(CodeInvalidArgument, "", "", err.Error())
	case errors.As(err, &adapter):
		return http.StatusBadGateway, errorBody(CodeControlPlaneFailure, "", adapter.Detail, adapter.Error())
	}
	return http.StatusInternalServerError, errorBody(CodeInternal, "", "", "internal error")
}

func errorBody(code, reason, detail, message string) gin.H {
	e := gin.H{"code": code, "message": message}
	if reason != "" {
		e["reason"] = reason
	}
	if detail != "" {
		e["detail"] = detail
	}
	return gin.H{"error": e}
}
