package api

import (
	"context"
	"net/http"

	"github.com/UnknownOlympus/athena/internal/auth"
	"github.com/UnknownOlympus/athena/internal/lib/logger/sl"
	"github.com/gin-gonic/gin"
)

type credentialsRequest struct {
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	DisplayName *string `json:"displayName"`
}

type resetEmailRequest struct {
	Email string `json:"email" binding:"required"`
}

type resetPasswordRequest struct {
	OOBCode     string `json:"oobCode"`
	NewPassword string `json:"newPassword"`
}

func authFailure(c *gin.Context, status int, message string, err error) {
	authErr := auth.AsError(err)
	c.JSON(status, gin.H{
		"message": message,
		"error":   authErr.Message,
		"code":    authErr.Code,
	})
}

func (a *API) register(c *gin.Context) {
	ctx := c.Request.Context()

	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		authFailure(c, http.StatusBadRequest, "Error registering user", auth.InvalidArgument(err))
		return
	}

	user, err := a.auth.Register(ctx, req.Email, req.Password, req.DisplayName)
	if err != nil {
		a.log.InfoContext(ctx, "Registration rejected", sl.Err(err))
		authFailure(c, http.StatusBadRequest, "Error registering user", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    user,
	})
}

func (a *API) login(c *gin.Context) {
	ctx := c.Request.Context()

	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		authFailure(c, http.StatusUnauthorized, "Invalid credentials", auth.InvalidArgument(err))
		return
	}

	user, token, err := a.auth.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		a.log.InfoContext(ctx, "Login rejected", sl.Err(err))
		authFailure(c, http.StatusUnauthorized, "Invalid credentials", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User logged in successfully",
		"user":    user,
		"idToken": token,
	})
}

// resetEmail answers before the email is sent so the response never reveals
// whether an account exists. The outcome is only logged.
func (a *API) resetEmail(c *gin.Context) {
	var req resetEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email is required."})
		return
	}

	a.dispatchReset(c.Request.Context(), req.Email)

	c.JSON(http.StatusOK, gin.H{"message": "Password reset successful"})
}

func (a *API) dispatchReset(parent context.Context, email string) {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		a.log.WarnContext(parent, "Password reset email dropped, shutting down")
		return
	}
	a.pending.Add(1)
	a.mu.Unlock()

	go func() {
		defer a.pending.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), a.opts.ResetTimeout)
		defer cancel()

		if err := a.auth.SendPasswordResetEmail(ctx, email); err != nil {
			a.log.WarnContext(ctx, "Password reset email not sent", "code", auth.AsError(err).Code, sl.Err(err))
		}
	}()
}

func (a *API) resetPassword(c *gin.Context) {
	ctx := c.Request.Context()

	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		authFailure(c, http.StatusBadRequest, "Error resetting password", auth.InvalidArgument(err))
		return
	}

	if err := a.auth.ConfirmPasswordReset(ctx, req.OOBCode, req.NewPassword); err != nil {
		a.log.InfoContext(ctx, "Password reset rejected", sl.Err(err))
		authFailure(c, http.StatusBadRequest, "Error resetting password", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password has been reset"})
}
