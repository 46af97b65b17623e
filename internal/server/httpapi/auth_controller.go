package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/osenouci/tokenkeeper/internal/common"
	"github.com/osenouci/tokenkeeper/internal/logging"
	"github.com/osenouci/tokenkeeper/internal/server/config"
	"github.com/osenouci/tokenkeeper/internal/server/services"
	"github.com/osenouci/tokenkeeper/internal/server/token"
)

const claimsKey = "accessClaims"

// AuthController exposes account, session, and device operations over HTTP.
// Token pairs travel in headers, never in bodies, so proxies and clients
// handle them uniformly with the check endpoint.
type AuthController struct {
	auth   *services.AuthService
	cfg    *config.Config
	logger logging.Logger
}

func NewAuthController(auth *services.AuthService, cfg *config.Config, logger logging.Logger) *AuthController {
	return &AuthController{auth: auth, cfg: cfg, logger: logger}
}

// deviceInfo reads the device identification headers. The name is mandatory:
// without it there is nothing to bind tokens to.
func (ctrl *AuthController) deviceInfo(c *gin.Context) (token.DeviceInfo, bool) {
	info := token.DeviceInfo{
		Name:      c.GetHeader(ctrl.cfg.DeviceNameHeader),
		Signature: c.GetHeader(ctrl.cfg.DeviceSignatureHeader),
	}
	if info.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing device identification"})
		return info, false
	}
	return info, true
}

func (ctrl *AuthController) setPairHeaders(c *gin.Context, pair *token.Pair) {
	c.Header(ctrl.cfg.AccessTokenHeader, pair.AccessToken)
	c.Header(ctrl.cfg.RefreshTokenHeader, pair.RefreshToken)
}

// Register handles POST /auth/register.
func (ctrl *AuthController) Register(c *gin.Context) {
	var form RegisterForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusNotAcceptable, gin.H{"message": "Invalid form"})
		return
	}

	user, err := ctrl.auth.Register(c.Request.Context(), form.Name, form.Email, form.Password, form.Gender, form.Language)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, gin.H{"id": user.ID, "name": user.Name})
	case errors.Is(err, common.ErrInvalidEmail):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid email address"})
	case errors.Is(err, common.ErrInvalidPassword):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Password does not meet the requirements"})
	case errors.Is(err, common.ErrAccountExists):
		c.JSON(http.StatusConflict, gin.H{"message": "Account already exists"})
	default:
		ctrl.logger.Error(c.Request.Context(), "registration failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not create account"})
	}
}

// Login handles POST /auth/login.
func (ctrl *AuthController) Login(c *gin.Context) {
	var form LoginForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusNotAcceptable, gin.H{"message": "Invalid form"})
		return
	}
	device, ok := ctrl.deviceInfo(c)
	if !ok {
		return
	}

	pair, err := ctrl.auth.Login(c.Request.Context(), form.Email, form.Password, device)
	switch {
	case err == nil:
		ctrl.setPairHeaders(c, pair)
		c.JSON(http.StatusOK, gin.H{"message": "Logged in"})
	case errors.Is(err, common.ErrAccountDoesNotExist), errors.Is(err, common.ErrWrongPassword):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
	case errors.Is(err, common.ErrSocialAccount):
		c.JSON(http.StatusConflict, gin.H{"message": "Please use your social account to log in"})
	case errors.Is(err, common.ErrAccountInactive):
		c.JSON(http.StatusForbidden, gin.H{"message": "Account is not activated"})
	default:
		ctrl.logger.Error(c.Request.Context(), "login failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not log in"})
	}
}

// Google handles POST /auth/google: login when the account exists, signup
// otherwise.
func (ctrl *AuthController) Google(c *gin.Context) {
	ctrl.social(c, ctrl.auth.RegisterWithGoogle)
}

// Facebook handles POST /auth/facebook.
func (ctrl *AuthController) Facebook(c *gin.Context) {
	ctrl.social(c, ctrl.auth.RegisterWithFacebook)
}

func (ctrl *AuthController) social(c *gin.Context, flow func(ctx context.Context, providerToken string, device token.DeviceInfo) (*token.Pair, error)) {
	var form SocialForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusNotAcceptable, gin.H{"message": "Invalid form"})
		return
	}
	device, ok := ctrl.deviceInfo(c)
	if !ok {
		return
	}

	pair, err := flow(c.Request.Context(), form.Token, device)
	switch {
	case err == nil:
		ctrl.setPairHeaders(c, pair)
		c.JSON(http.StatusOK, gin.H{"message": "Logged in"})
	case errors.Is(err, common.ErrorUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Provider rejected the token"})
	default:
		ctrl.logger.Error(c.Request.Context(), "social login failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not log in"})
	}
}

// Check handles GET /token/check: the renewal pass. The possibly rotated
// pair is echoed back in the response headers.
func (ctrl *AuthController) Check(c *gin.Context) {
	presented := token.Pair{
		AccessToken:  c.GetHeader(ctrl.cfg.AccessTokenHeader),
		RefreshToken: c.GetHeader(ctrl.cfg.RefreshTokenHeader),
	}

	out, err := ctrl.auth.Check(c.Request.Context(), presented)
	if err != nil {
		if common.ForceReLogin(err) {
			c.Header(ctrl.cfg.RefreshExpiredHeader, "true")
		}
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Please login first"})
		return
	}

	ctrl.setPairHeaders(c, &out.Pair)
	c.JSON(http.StatusOK, gin.H{
		"accessRotated":  out.AccessRotated,
		"refreshRotated": out.RefreshRotated,
	})
}

// Devices handles GET /devices for the authenticated user.
func (ctrl *AuthController) Devices(c *gin.Context) {
	claims := c.MustGet(claimsKey).(*token.Claims)

	list, err := ctrl.auth.Devices(c.Request.Context(), claims.UserID())
	if err != nil {
		ctrl.logger.Error(c.Request.Context(), "device listing failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not list devices"})
		return
	}

	devices := make([]gin.H, 0, len(list))
	for _, d := range list {
		devices = append(devices, gin.H{
			"name":      d.Name,
			"createdAt": d.CreatedAt,
			"current":   d.ID == claims.DeviceID(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"devices": devices})
}

// RevokeDevice handles DELETE /devices/:name.
func (ctrl *AuthController) RevokeDevice(c *gin.Context) {
	claims := c.MustGet(claimsKey).(*token.Claims)

	if err := ctrl.auth.RevokeDevice(c.Request.Context(), c.Param("name"), claims.UserID()); err != nil {
		ctrl.logger.Error(c.Request.Context(), "device revocation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not revoke device"})
		return
	}
	c.Status(http.StatusNoContent)
}

// TokenAuthMiddleware runs the renewal pass on every guarded request, echoes
// rotated tokens, and stores the decoded access claims in the context.
func (ctrl *AuthController) TokenAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		presented := token.Pair{
			AccessToken:  c.GetHeader(ctrl.cfg.AccessTokenHeader),
			RefreshToken: c.GetHeader(ctrl.cfg.RefreshTokenHeader),
		}

		out, err := ctrl.auth.Check(c.Request.Context(), presented)
		if err != nil || out.Access == nil {
			if err != nil && common.ForceReLogin(err) {
				c.Header(ctrl.cfg.RefreshExpiredHeader, "true")
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Please login first"})
			return
		}

		ctrl.setPairHeaders(c, &out.Pair)
		c.Set(claimsKey, out.Access)
		c.Next()
	}
}
