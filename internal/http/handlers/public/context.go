package public

import (
	"strconv"
	"strings"

	"github.com/3syncai/affiliate-portal-sub001/internal/constants"
	handlershared "github.com/3syncai/affiliate-portal-sub001/internal/http/handlers/shared"
	"github.com/3syncai/affiliate-portal-sub001/internal/http/response"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

func normalizePagination(page, pageSize int) (int, int) {
	return handlershared.NormalizePagination(page, pageSize)
}

// paramActorRole validates the :role path segment.
func paramActorRole(c *gin.Context) (string, bool) {
	role := strings.TrimSpace(c.Param("role"))
	switch role {
	case constants.ActorRoleAgent,
		constants.ActorRoleBranchAdmin,
		constants.ActorRoleAreaManager,
		constants.ActorRoleStateAdmin:
		return role, true
	}
	respondError(c, response.CodeBadRequest, "unknown actor role", nil)
	return "", false
}

func paramUint(c *gin.Context, name string) (uint, bool) {
	raw := strings.TrimSpace(c.Param(name))
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid "+name, nil)
		return 0, false
	}
	return uint(id), true
}
