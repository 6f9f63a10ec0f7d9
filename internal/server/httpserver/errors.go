package httpserver

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var statusByCode = map[string]int{
	common.CodeValidationFailed:     http.StatusBadRequest,
	common.CodeAlreadyExists:        http.StatusConflict,
	common.CodeInvalidCredentials:   http.StatusUnauthorized,
	common.CodeInvalidOrExpiredCode: http.StatusBadRequest,
	common.CodeInvalidRefreshToken:  http.StatusUnauthorized,
	common.CodeEmailNotVerified:     http.StatusForbidden,
	common.CodeAlreadyVerified:      http.StatusConflict,
	common.CodeNotFound:             http.StatusNotFound,
	common.CodeRateLimited:          http.StatusTooManyRequests,
	common.CodeUnauthorized:         http.StatusUnauthorized,
	common.CodeInternal:             http.StatusInternalServerError,
}

func statusFor(err error) int {
	if st, ok := statusByCode[common.Code(err)]; ok {
		return st
	}
	return http.StatusInternalServerError
}

func (s *HTTPServer) writeError(c *gin.Context, err error) {
	s.writeErrorStatus(c, statusFor(err), err)
}

func (s *HTTPServer) writeErrorStatus(c *gin.Context, status int, err error) {
	var known *common.Error
	if !errors.As(err, &known) && common.Code(err) == common.CodeInternal {
		s.logger.Error(c.Request.Context(), "unhandled error", "error", err)
	}
	c.AbortWithStatusJSON(status, errorResponse{Code: common.Code(err), Message: common.Message(err)})
}

func invalidPayload() error {
	return common.NewError(common.ErrorValidation, "invalid payload")
}
