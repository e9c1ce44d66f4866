package controller

import (
	"cbt_cms/internal/client"
	"cbt_cms/internal/service"
	"cbt_cms/internal/util"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not confirmed", util.ErrNotConfirmed, http.StatusConflict},
		{"validation", util.ErrCategoryRequired, http.StatusBadRequest},
		{"wrapped validation", fmt.Errorf("command 2 (remove_option): %w", util.ErrOptionIndex), http.StatusBadRequest},
		{"invalid test", fmt.Errorf("%w: title", util.ErrInvalidTest), http.StatusBadRequest},
		{"missing session", util.ErrSessionNotFound, http.StatusNotFound},
		{"empty export", util.ErrExportEmpty, http.StatusNotFound},
		{"foreign session", util.ErrPermissionDenied, http.StatusForbidden},
		{"upstream unauthorized", &client.APIError{Status: http.StatusUnauthorized}, http.StatusUnauthorized},
		{"upstream not found", fmt.Errorf("get question 3: %w", &client.APIError{Status: http.StatusNotFound}), http.StatusNotFound},
		{"upstream unprocessable", &client.APIError{Status: http.StatusUnprocessableEntity}, http.StatusUnprocessableEntity},
		{"upstream server error", &client.APIError{Status: http.StatusInternalServerError}, http.StatusBadGateway},
		{"local failure", errors.New("disk full"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errorStatus(tt.err))
		})
	}
}

func TestRespondErrorKeepsNotifications(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	ctx.Request = httptest.NewRequest(http.MethodPost, "/api/tests/1/export", nil)

	rep := service.NewRequestReporter(false)
	rep.Notify(util.NotifyError, "Gagal memulai export")
	respondError(ctx, &client.APIError{Status: http.StatusServiceUnavailable, Message: "maintenance"}, rep)

	require.Equal(t, http.StatusBadGateway, w.Code)
	var body struct {
		Code    int               `json:"code"`
		Message string            `json:"message"`
		Data    util.NotifiedData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, http.StatusBadGateway, body.Code)
	assert.Contains(t, body.Message, "maintenance")
	assert.Equal(t, []util.Notification{{Kind: util.NotifyError, Message: "Gagal memulai export"}}, body.Data.Notifications)
}

func TestRespondErrorHidesInternalDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	ctx.Request = httptest.NewRequest(http.MethodGet, "/api/tests", nil)

	respondError(ctx, errors.New("dial tcp 10.0.0.3:3306: connection refused"), nil)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "10.0.0.3")
}

func TestNewReporterReadsConfirm(t *testing.T) {
	gin.SetMode(gin.TestMode)
	for query, want := range map[string]bool{"": false, "?confirm=true": true, "?confirm=1": true, "?confirm=no": false} {
		ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
		ctx.Request = httptest.NewRequest(http.MethodDelete, "/api/tests/1"+query, nil)
		assert.Equal(t, want, newReporter(ctx).Confirm("Hapus Test?"), query)
	}
}
