package stockgatewayserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	invapp "github.com/Apurer/go-stock-gateway/internal/domains/inventory/application"
	apierrors "github.com/Apurer/go-stock-gateway/internal/shared/errors"
)

// respondProblem maps a ProblemDetail through the shared responder.
func respondProblem(c *gin.Context, problem apierrors.ProblemDetail) {
	apierrors.Respond(c, problem)
}

// respondError returns RFC 7807 responses for transport-level failures.
func respondError(c *gin.Context, status int, err error) {
	if err == nil {
		return
	}
	var problem apierrors.ProblemDetail
	switch status {
	case http.StatusBadRequest:
		problem = apierrors.ErrBadRequest.WithDetail(err.Error())
	case http.StatusNotFound:
		problem = apierrors.ErrNotFound.WithDetail(err.Error())
	default:
		problem = apierrors.ErrInternal.WithDetail(err.Error())
	}
	respondProblem(c, problem)
}

// respondStockServiceError maps inventory application errors onto problem
// responses. A rejected retrieval is the caller's fault; a warehouse
// fetch failure is an upstream fault that is fatal to this request.
func respondStockServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, invapp.ErrRejected):
		respondProblem(c, apierrors.ErrBadRequest.WithDetail("not enough stock"))
	case errors.Is(err, invapp.ErrInvalidInput):
		respondProblem(c, apierrors.ErrValidation.WithDetail(err.Error()))
	default:
		respondProblem(c, apierrors.ErrUpstream.WithDetail(err.Error()))
	}
}

func errInvalidID(name, raw string) error {
	return fmt.Errorf("path parameter %s must be a positive integer, got %q", name, raw)
}
