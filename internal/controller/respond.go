package controller

import (
	"cbt_cms/internal/client"
	"cbt_cms/internal/model"
	"cbt_cms/internal/service"
	"cbt_cms/internal/util"
	"cbt_cms/pkg/logger"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// newReporter answers confirmations with the ?confirm= flag of the request.
func newReporter(ctx *gin.Context) *service.RequestReporter {
	confirmed, _ := strconv.ParseBool(ctx.Query("confirm"))
	return service.NewRequestReporter(confirmed)
}

func currentViewer(ctx *gin.Context) (model.Viewer, bool) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return model.Viewer{}, false
	}
	return claims.Viewer(), true
}

func pathID(ctx *gin.Context, name string) (uint, bool) {
	id, err := util.ParseID(ctx.Param(name))
	if err != nil {
		util.BadRequest(ctx, "无效的ID")
		return 0, false
	}
	return id, true
}

func successWithNotes(ctx *gin.Context, result interface{}, rep *service.RequestReporter) {
	util.Success(ctx, util.NotifiedData{Result: result, Notifications: rep.Notifications()})
}

// errorStatus maps service and exam API errors onto HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, util.ErrNotConfirmed), errors.Is(err, util.ErrAlreadySubmitting):
		return http.StatusConflict
	case util.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, util.ErrSessionNotFound), errors.Is(err, util.ErrExportEmpty):
		return http.StatusNotFound
	case errors.Is(err, util.ErrPermissionDenied):
		return http.StatusForbidden
	}

	switch status := client.StatusOf(err); status {
	case 0:
		return http.StatusInternalServerError
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound, http.StatusUnprocessableEntity:
		return status
	default:
		return http.StatusBadGateway
	}
}

func respondError(ctx *gin.Context, err error, rep *service.RequestReporter) {
	respondErrorWithResult(ctx, err, rep, nil)
}

// respondErrorWithResult answers a failure together with the notifications
// raised before it and, when given, the state the failure left behind.
func respondErrorWithResult(ctx *gin.Context, err error, rep *service.RequestReporter, result interface{}) {
	var notes []util.Notification
	if rep != nil {
		notes = rep.Notifications()
	}

	status := errorStatus(err)
	message := err.Error()
	switch status {
	case http.StatusInternalServerError:
		logger.Log.Error("Internal server error", zap.Error(err), zap.String("path", ctx.FullPath()))
		message = "Internal server error"
	case http.StatusBadGateway:
		logger.Log.Warn("exam api error", zap.Error(err), zap.String("path", ctx.FullPath()))
	}

	if errors.Is(err, util.ErrNotConfirmed) {
		var prompts []string
		if rep != nil {
			prompts = rep.Prompts()
		}
		util.ErrorWithData(ctx, status, "confirmation required", gin.H{
			"prompts":       prompts,
			"notifications": notes,
		})
		return
	}

	util.ErrorWithData(ctx, status, message, util.NotifiedData{Result: result, Notifications: notes})
}
