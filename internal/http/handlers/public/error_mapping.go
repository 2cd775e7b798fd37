package public

import (
	"errors"

	"github.com/3syncai/affiliate-portal-sub001/internal/http/response"
	"github.com/3syncai/affiliate-portal-sub001/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError maps a service error to an API error response.
type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.msg, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

var balanceErrorRules = []mappedHandlerError{
	{target: service.ErrActorNotFound, code: response.CodeNotFound, msg: "actor not found"},
	{target: service.ErrNotFound, code: response.CodeNotFound, msg: "actor not found"},
}

var withdrawalRequestErrorRules = []mappedHandlerError{
	{target: service.ErrActorNotFound, code: response.CodeNotFound, msg: "actor not found"},
	{target: service.ErrActorDisabled, code: response.CodeForbidden, msg: "actor is disabled"},
	{target: service.ErrInvalidAmount, code: response.CodeBadRequest, msg: "invalid withdrawal amount"},
	{target: service.ErrInsufficientBalance, code: response.CodeBadRequest, msg: "insufficient balance"},
	{target: service.ErrWithdrawalPendingOpen, code: response.CodeConflict, msg: "a withdrawal request is already pending"},
}

var withdrawalCancelErrorRules = []mappedHandlerError{
	{target: service.ErrNotFound, code: response.CodeNotFound, msg: "withdrawal request not found"},
	{target: service.ErrPermissionDenied, code: response.CodeForbidden, msg: "not the requester"},
	{target: service.ErrInvalidTransition, code: response.CodeBadRequest, msg: "request is no longer pending"},
}
