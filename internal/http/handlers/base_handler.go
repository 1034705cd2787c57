// README: Shared handler utilities (JSON helpers, error mapping, actor resolution).
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"swiftdrop/internal/http/middleware"
	"swiftdrop/internal/modules/order"
	"swiftdrop/internal/types"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// writeOrderError maps engine errors to HTTP statuses: validation failures are
// 400, authorization 403, unknown orders 404, and state conflicts 409.
func writeOrderError(c *gin.Context, err error) {
	switch err {
	case order.ErrBadRequest, order.ErrMissingProof, order.ErrOTPMismatch:
		writeError(c, http.StatusBadRequest, err.Error())
	case order.ErrUnauthorized:
		writeError(c, http.StatusForbidden, err.Error())
	case order.ErrNotFound:
		writeError(c, http.StatusNotFound, err.Error())
	case order.ErrInvalidState, order.ErrConflict, order.ErrActiveOrder:
		writeError(c, http.StatusConflict, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

// callerActor builds the engine actor from the authenticated session.
func callerActor(c *gin.Context) order.Actor {
	return order.Actor{
		Type: order.ActorType(middleware.CallerRole(c)),
		ID:   types.ID(middleware.CallerUID(c)),
	}
}
