package handler

import (
	"errors"
	"net/http"
	"time"

	"shpfusion-api/internal/dto"
	"shpfusion-api/internal/middleware"
	"shpfusion-api/internal/service"

	"github.com/labstack/echo/v4"
)

type UserHandler struct {
	userService service.UserService
	sessionTTL  time.Duration
	secureMode  bool
}

func NewUserHandler(userService service.UserService, sessionTTL time.Duration, secureMode bool) *UserHandler {
	return &UserHandler{
		userService: userService,
		sessionTTL:  sessionTTL,
		secureMode:  secureMode,
	}
}

func (h *UserHandler) Signup(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.SignupRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}

	user, err := h.userService.Signup(ctx, &req)
	if err != nil {
		return writeServiceError(c, err, "Something went wrong. Please try again.")
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "Account created successfully! Please check your email to verify your account.",
		"user":    user,
	})
}

func (h *UserHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.LoginRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}

	token, user, err := h.userService.Login(ctx, &req)
	if err != nil {
		if errors.Is(err, service.ErrEmailNotVerified) {
			return c.JSON(http.StatusForbidden, map[string]interface{}{
				"success":              false,
				"message":              "Please verify your email before logging in",
				"requiresVerification": true,
			})
		}
		return writeServiceError(c, err, "Authentication failed. Please try again.")
	}

	h.setSessionCookie(c, token, h.sessionTTL)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Login successful",
		"user":    user,
	})
}

func (h *UserHandler) Logout(c echo.Context) error {
	// expire the cookie immediately
	h.setSessionCookie(c, "", -time.Hour)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Logout successful",
	})
}

func (h *UserHandler) Me(c echo.Context) error {
	ctx := c.Request().Context()

	userID, _ := c.Get(middleware.UserIDKey).(string)
	if userID == "" {
		return fail(c, http.StatusUnauthorized, "Token missing or invalid")
	}

	user, err := h.userService.GetMe(ctx, userID)
	if err != nil {
		return writeServiceError(c, err, "Failed to load user")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "User found",
		"user":    user,
	})
}

func (h *UserHandler) VerifyEmail(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.TokenRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}

	if err := h.userService.VerifyEmail(ctx, req.Token); err != nil {
		var expired *service.ErrVerifyTokenExpired
		if errors.As(err, &expired) {
			return c.JSON(http.StatusBadRequest, map[string]interface{}{
				"success":   false,
				"message":   "Token expired",
				"canResend": true,
				"userId":    expired.UserID,
			})
		}
		return writeServiceError(c, err, "Verification failed")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Email verified successfully",
	})
}

func (h *UserHandler) ResendVerification(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		UserID string `json:"userId"`
	}
	if err := c.Bind(&req); err != nil || req.UserID == "" {
		return fail(c, http.StatusBadRequest, "User ID is required")
	}

	if err := h.userService.ResendVerification(ctx, req.UserID); err != nil {
		return writeServiceError(c, err, "Failed to resend verification email")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Verification email sent",
	})
}

func (h *UserHandler) ForgotPassword(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.EmailRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}

	if err := h.userService.ForgotPassword(ctx, req.Email); err != nil {
		if errors.Is(err, service.ErrEmailNotVerified) {
			return fail(c, http.StatusBadRequest, "Please verify your email before resetting password")
		}
		return writeServiceError(c, err, "Something went wrong. Please try again.")
	}

	// identical response whether or not the account exists
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "If an account with that email exists, a password reset link has been sent.",
	})
}

func (h *UserHandler) VerifyResetToken(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.TokenRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}

	if err := h.userService.VerifyResetToken(ctx, req.Token); err != nil {
		return writeServiceError(c, err, "Token verification failed")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Token is valid",
	})
}

func (h *UserHandler) ResetPassword(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}

	if err := h.userService.ResetPassword(ctx, req.Token, req.Password); err != nil {
		return writeServiceError(c, err, "Failed to reset password")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Password reset successfully",
	})
}

func (h *UserHandler) setSessionCookie(c echo.Context, token string, maxAge time.Duration) {
	sameSite := http.SameSiteLaxMode
	if h.secureMode {
		sameSite = http.SameSiteStrictMode
	}

	c.SetCookie(&http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.secureMode,
		SameSite: sameSite,
	})
}
