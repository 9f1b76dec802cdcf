package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/railxam2004/CulT/internal/domain"
	"github.com/railxam2004/CulT/internal/dto"
	"github.com/railxam2004/CulT/internal/gateway"
	"github.com/railxam2004/CulT/pkg/logger"
	"github.com/railxam2004/CulT/pkg/middleware"
	"github.com/railxam2004/CulT/pkg/response"
	"go.uber.org/zap"
)

// currentActor returns the authenticated caller or writes 401
func currentActor(c *gin.Context) (domain.Actor, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Unauthorized("Authentication required"))
		return domain.Actor{}, false
	}
	role, _ := middleware.GetRole(c)
	return domain.Actor{UserID: userID, Role: domain.Role(role)}, true
}

// optionalActor returns the caller when a token was sent, otherwise an anonymous actor
func optionalActor(c *gin.Context) domain.Actor {
	userID, _ := middleware.GetUserID(c)
	role, _ := middleware.GetRole(c)
	return domain.Actor{UserID: userID, Role: domain.Role(role)}
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, response.ValidationError(dto.ValidationMessage(err)))
		return false
	}
	return true
}

func bindQuery(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		c.JSON(http.StatusBadRequest, response.ValidationError(dto.ValidationMessage(err)))
		return false
	}
	return true
}

// handleError maps service errors to HTTP responses
func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, response.Forbidden(err.Error()))
	case errors.Is(err, domain.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, response.Error("INVALID_CREDENTIALS", "Invalid email or password"))
	case errors.Is(err, domain.ErrUserInactive):
		c.JSON(http.StatusForbidden, response.Error("USER_INACTIVE", "User account is inactive"))
	case errors.Is(err, domain.ErrInvalidToken), errors.Is(err, domain.ErrTokenExpired):
		c.JSON(http.StatusUnauthorized, response.Error("INVALID_TOKEN", "Invalid or expired token"))
	case errors.Is(err, domain.ErrInsufficientQuota):
		c.JSON(http.StatusConflict, response.Error("INSUFFICIENT_QUOTA", err.Error()))
	case errors.Is(err, domain.ErrOrderNotPending):
		c.JSON(http.StatusConflict, response.Error("ORDER_NOT_PENDING", err.Error()))
	case errors.Is(err, domain.ErrPaymentInProgress):
		c.JSON(http.StatusConflict, response.Error("PAYMENT_IN_PROGRESS", err.Error()))
	case errors.Is(err, domain.ErrInvalidSignature):
		c.JSON(http.StatusBadRequest, response.Error("INVALID_SIGNATURE", err.Error()))
	case errors.Is(err, gateway.ErrMalformedPayload):
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
	case errors.Is(err, domain.ErrGatewayUnavailable):
		c.JSON(http.StatusBadGateway, response.Error("GATEWAY_UNAVAILABLE", "Payment provider is unavailable, try again later"))
	case domain.IsNotFoundError(err):
		c.JSON(http.StatusNotFound, response.NotFound(err.Error()))
	case domain.IsConflictError(err):
		c.JSON(http.StatusConflict, response.Conflict(response.CodeConflict, err.Error()))
	case domain.IsValidationError(err):
		c.JSON(http.StatusUnprocessableEntity, response.ValidationError(err.Error()))
	default:
		logger.Get().WithContext(c.Request.Context()).Error("request failed",
			zap.String("request_id", middleware.RequestIDFromContext(c.Request.Context())),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, response.InternalError())
	}
}
