// Package httpapi exposes the authentication flows over HTTP. It owns only
// the boundary concerns: request decoding, the session cookie, and the
// mapping from service errors to the fixed status/message pairs.
package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quickbyte/quickbyte-auth/internal/common"
	"github.com/quickbyte/quickbyte-auth/internal/logging"
	"github.com/quickbyte/quickbyte-auth/internal/server/services"
)

// AuthHandler adapts AuthService to the HTTP surface.
type AuthHandler struct {
	auth             *services.AuthService
	logger           logging.Logger
	sessionMaxAgeSec int
}

func NewAuthHandler(auth *services.AuthService, logger logging.Logger, sessionMaxAgeSec int) *AuthHandler {
	return &AuthHandler{
		auth:             auth,
		logger:           logger.With("module", "http_handler"),
		sessionMaxAgeSec: sessionMaxAgeSec,
	}
}

type profileOut struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

func toProfileOut(p *services.Profile) profileOut {
	return profileOut{ID: p.ID, FirstName: p.FirstName, LastName: p.LastName, Email: p.Email}
}

type signupIn struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupIn
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	id, err := h.auth.Signup(c.Request.Context(), req.FirstName, req.LastName, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorEmailAlreadyExists):
			c.JSON(http.StatusConflict, gin.H{"error": "User already exists"})
		case errors.Is(err, common.ErrorDeliveryFailure):
			c.JSON(http.StatusBadGateway, gin.H{"error": "Verification email could not be sent"})
		default:
			h.internalError(c, err)
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id})
}

type loginIn struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginIn
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	profile, sessionID, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "User does not exist"})
		case errors.Is(err, common.ErrorInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid password"})
		case errors.Is(err, common.ErrorEmailNotVerified):
			c.JSON(http.StatusForbidden, gin.H{"error": "Email not verified"})
		default:
			h.internalError(c, err)
		}
		return
	}

	c.SetCookie(common.SessionCookieName, sessionID, h.sessionMaxAgeSec, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"data": toProfileOut(profile)})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	sessionID, err := c.Cookie(common.SessionCookieName)
	if err != nil || sessionID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	// reject sessions that are already gone so logout needs real authentication
	if _, err := h.auth.CurrentUser(c.Request.Context(), sessionID); err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		h.internalError(c, err)
		return
	}

	if err := h.auth.Logout(c.Request.Context(), sessionID); err != nil {
		h.internalError(c, err)
		return
	}

	c.SetCookie(common.SessionCookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"data": "Ok"})
}

func (h *AuthHandler) Me(c *gin.Context) {
	sessionID, err := c.Cookie(common.SessionCookieName)
	if err != nil || sessionID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	profile, err := h.auth.CurrentUser(c.Request.Context(), sessionID)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		h.internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": toProfileOut(profile)})
}

type forgotPasswordIn struct {
	Email string `json:"email" binding:"required,email"`
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordIn
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if err := h.auth.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, common.ErrorNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "User does not exist"})
		case errors.Is(err, common.ErrorDeliveryFailure):
			c.JSON(http.StatusBadGateway, gin.H{"error": "Reset email could not be sent"})
		default:
			h.internalError(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *AuthHandler) VerifyResetPasswordToken(c *gin.Context) {
	token := c.Query("token")

	if err := h.auth.VerifyResetPasswordToken(c.Request.Context(), token); err != nil {
		h.resetTokenError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type resetPasswordIn struct {
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
	Token           string `json:"token" binding:"required"`
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordIn
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if err := h.auth.ResetPassword(c.Request.Context(), req.Token, req.Password, req.ConfirmPassword); err != nil {
		if errors.Is(err, common.ErrorValidation) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Confirm Password should be same as Password"})
			return
		}
		h.resetTokenError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type sendVerificationEmailIn struct {
	Email string `json:"email" binding:"required,email"`
}

func (h *AuthHandler) SendVerificationEmail(c *gin.Context) {
	var req sendVerificationEmailIn
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	id, err := h.auth.ResendVerification(c.Request.Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "User does not exist"})
		case errors.Is(err, common.ErrorDeliveryFailure):
			c.JSON(http.StatusBadGateway, gin.H{"error": "Verification email could not be sent"})
		default:
			h.internalError(c, err)
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	token := c.Query("token")

	if err := h.auth.VerifyEmail(c.Request.Context(), token); err != nil {
		// every failure kind is deliberately indistinguishable here
		if errors.Is(err, common.ErrInvalidToken) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}
		h.internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// resetTokenError maps the reset-chain failure kinds shared by the pre-check
// and the reset itself. The ledger miss is the one 404; everything else in
// the chain is a 401 with its own message.
func (h *AuthHandler) resetTokenError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrorResetTokenNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Token doesnot exist"})
	case errors.Is(err, common.ErrorResetTokenAlreadyUsed):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token has been already used"})
	case errors.Is(err, common.ErrTokenExpired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token has expired"})
	case errors.Is(err, common.ErrTokenMalformed):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token couldnot be decoded"})
	case errors.Is(err, common.ErrTokenPurposeMismatch):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token is not valid for this operation"})
	case errors.Is(err, common.ErrTokenSignatureInvalid), errors.Is(err, common.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token is invalid"})
	default:
		h.internalError(c, err)
	}
}

func (h *AuthHandler) internalError(c *gin.Context, err error) {
	h.logger.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err.Error())
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
}
