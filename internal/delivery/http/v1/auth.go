package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/task-manager-api/internal/services"
	"github.com/adanyl0v/task-manager-api/internal/validation"
)

type authResponse struct {
	User        userResponse `json:"user"`
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
}

func newAuthResponse(result *services.AuthResult) authResponse {
	return authResponse{
		User:        newUserResponse(result.User),
		AccessToken: result.AccessToken,
		TokenType:   result.TokenType,
	}
}

func (h *handlerImpl) HandleRegister(c *gin.Context) {
	var req services.RegisterParams
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.auth.Register(c, req)
	if err != nil {
		var errs validation.Errors
		if errors.As(err, &errs) {
			abort(c, newValidationError(errs))
			return
		}

		h.logger.Error().
			Err(err).
			Msg("failed to register")
		abort(c, newInternalError(err))
		return
	}

	respond(c, http.StatusCreated, "User registered successfully", newAuthResponse(result))
}

func (h *handlerImpl) HandleLogin(c *gin.Context) {
	var req services.LoginParams
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.auth.Login(c, req)
	if err != nil {
		var errs validation.Errors
		switch {
		case errors.As(err, &errs):
			abort(c, newValidationError(errs))
		case errors.Is(err, services.ErrInvalidCredentials):
			abort(c, newUnauthorizedError(msgInvalidCredentials))
		default:
			h.logger.Error().
				Err(err).
				Msg("failed to login")
			abort(c, newInternalError(err))
		}
		return
	}

	respond(c, http.StatusOK, "User logged in successfully", newAuthResponse(result))
}

func (h *handlerImpl) HandleCurrentUser(c *gin.Context) {
	user, _, ok := currentUser(c)
	if !ok {
		h.logger.Error().Msg("no user found in context")
		abort(c, newUnauthorizedError(msgUnauthorized))
		return
	}

	respond(c, http.StatusOK, "", newUserResponse(user))
}

func (h *handlerImpl) HandleLogout(c *gin.Context) {
	_, token, ok := currentUser(c)
	if !ok {
		h.logger.Error().Msg("no token found in context")
		abort(c, newUnauthorizedError(msgUnauthorized))
		return
	}

	err := h.auth.Logout(c, token.ID)
	if err != nil {
		if errors.Is(err, services.ErrUnauthenticated) {
			abort(c, newUnauthorizedError(msgUnauthorized))
			return
		}

		h.logger.Error().
			Err(err).
			Msg("failed to logout")
		abort(c, newInternalError(err))
		return
	}

	respond(c, http.StatusOK, "User logged out successfully", nil)
}
