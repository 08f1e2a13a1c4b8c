package v1

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/task-manager-api/internal/models"
	"github.com/adanyl0v/task-manager-api/internal/services"
)

const (
	userCtxKey  = "user"
	tokenCtxKey = "token"
)

func (h *handlerImpl) HandleAuthMiddleware(c *gin.Context) {
	const authHeader = "Authorization"
	header := c.GetHeader(authHeader)
	if header == "" {
		h.logger.Debug().Msg("authorization header required")
		abort(c, newUnauthorizedError(msgUnauthorized))
		return
	}

	scheme, accessToken, ok := strings.Cut(strings.TrimSpace(header), " ")
	accessToken = strings.TrimSpace(accessToken)
	if !ok || !strings.EqualFold(scheme, services.TokenType) || accessToken == "" {
		h.logger.Debug().Msg("invalid authorization header")
		abort(c, newUnauthorizedError(msgUnauthorized))
		return
	}

	token, user, err := h.auth.Authenticate(c, accessToken)
	if err != nil {
		if errors.Is(err, services.ErrUnauthenticated) {
			abort(c, newUnauthorizedError(msgUnauthorized))
			return
		}

		h.logger.Error().
			Err(err).
			Msg("failed to authenticate")
		abort(c, newInternalError(err))
		return
	}

	c.Set(userCtxKey, user)
	c.Set(tokenCtxKey, token)
	c.Next()
}

// currentUser must only be called behind HandleAuthMiddleware.
func currentUser(c *gin.Context) (*models.User, *models.Token, bool) {
	userValue, _ := c.Get(userCtxKey)
	tokenValue, _ := c.Get(tokenCtxKey)

	user, userOK := userValue.(*models.User)
	token, tokenOK := tokenValue.(*models.Token)
	return user, token, userOK && tokenOK
}

func (h *handlerImpl) HandleRecovery(c *gin.Context) {
	defer func() {
		recovered := recover()
		if recovered == nil {
			return
		}
		if recovered == http.ErrAbortHandler {
			panic(recovered)
		}

		h.logger.Error().
			Interface("panic", recovered).
			Bytes("stack", debug.Stack()).
			Msg("recovered from panic")
		abort(c, newInternalError(fmt.Errorf("%v", recovered)))
	}()
	c.Next()
}
