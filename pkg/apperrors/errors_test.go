package apperrors

import (
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

func TestIs_MatchesCopies(t *testing.T) {
	withDetails := ErrSiteNotFound.WithDetails(map[string]string{"id": "3"})
	wrapped := fmt.Errorf("delete site: %w", withDetails)

	assert.True(t, errors.Is(wrapped, ErrSiteNotFound))
	assert.False(t, errors.Is(wrapped, ErrProfileNotFound))
	assert.Nil(t, ErrSiteNotFound.Details, "исходная переменная не мутируется")
}

func TestHandleError_HidesInternalDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	HandleError(c, errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")

	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, string(CodeInternalError), body.Error.Code)
	assert.Equal(t, "Internal server error", body.Error.Message)
}

func TestHandleError_FieldErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

	HandleError(c, FieldError("email", "This field is required"))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.JSONEq(t,
		`{"error":{"code":"VALIDATION_FAILED","domain":"validation","message":"Validation failed","details":{"email":"This field is required"}}}`,
		rec.Body.String())
}
