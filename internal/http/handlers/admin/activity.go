package admin

import (
	"strconv"
	"strings"

	"github.com/3syncai/affiliate-portal-sub001/internal/http/response"
	"github.com/3syncai/affiliate-portal-sub001/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListActivity lists activity feed entries across all actors, with
// optional role, actor and verb filters.
func (h *Handler) ListActivity(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.ActivityListFilter{
		ActorRole: strings.TrimSpace(c.Query("actor_role")),
		Verb:      strings.TrimSpace(c.Query("verb")),
		Page:      page,
		PageSize:  pageSize,
	}
	if raw := strings.TrimSpace(c.Query("actor_id")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondError(c, response.CodeBadRequest, "actor_id must be numeric", err)
			return
		}
		filter.ActorID = uint(id)
	}

	rows, total, err := h.ActivityService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "activity fetch failed", err)
		return
	}
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}
