package httpserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/gin-gonic/gin"
)

type emailRequest struct {
	Email string `json:"email"`
}

type verifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type resetRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"newPassword"`
}

func (s *HTTPServer) register(c *gin.Context) {
	var req services.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, invalidPayload())
		return
	}

	res, err := s.identity.Register(c.Request.Context(), req)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (s *HTTPServer) verifyEmail(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, invalidPayload())
		return
	}

	res, err := s.identity.VerifyEmail(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *HTTPServer) resendVerification(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, invalidPayload())
		return
	}

	if err := s.identity.ResendVerification(c.Request.Context(), req.Email); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"dispatched": true})
}

func (s *HTTPServer) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, invalidPayload())
		return
	}

	ctx := c.Request.Context()
	allowed, retry, err := s.loginLimiter.Allow(ctx, "login:"+c.ClientIP(), s.now())
	if err != nil {
		s.logger.Warn(ctx, "login limiter unavailable", "error", err)
	} else if !allowed {
		c.Header("Retry-After", strconv.Itoa(int(retry.Round(time.Second).Seconds())))
		s.writeError(c, common.NewError(common.ErrorRateLimited, "too many login attempts"))
		return
	}

	res, err := s.identity.Login(ctx, req.Email, req.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *HTTPServer) refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, invalidPayload())
		return
	}

	pair, err := s.identity.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tokens": pair})
}

func (s *HTTPServer) logout(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, invalidPayload())
		return
	}

	if err := s.identity.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		st := statusFor(err)
		if common.Code(err) == common.CodeInvalidRefreshToken {
			st = http.StatusBadRequest
		}
		s.writeErrorStatus(c, st, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *HTTPServer) forgotPassword(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, invalidPayload())
		return
	}

	if err := s.identity.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *HTTPServer) resetPassword(c *gin.Context) {
	var req resetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, invalidPayload())
		return
	}

	if err := s.identity.ResetPassword(c.Request.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *HTTPServer) getProfile(c *gin.Context) {
	user, err := s.identity.GetProfile(c.Request.Context(), c.GetString(contextUserIDKey))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (s *HTTPServer) updateProfile(c *gin.Context) {
	var req services.ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, invalidPayload())
		return
	}

	user, err := s.identity.UpdateProfile(c.Request.Context(), c.GetString(contextUserIDKey), req)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
