package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/3syncai/affiliate-portal-sub001/internal/http/response"
	"github.com/3syncai/affiliate-portal-sub001/internal/repository"
	"github.com/3syncai/affiliate-portal-sub001/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ProductRequest is the product create/update payload. An empty
// commission_amount means "inherit from category or collection".
type ProductRequest struct {
	Name             string `json:"name" binding:"required"`
	Price            string `json:"price" binding:"required"`
	CommissionAmount string `json:"commission_amount"`
	CategoryID       *uint  `json:"category_id"`
	CollectionID     *uint  `json:"collection_id"`
	IsActive         *bool  `json:"is_active"`
}

func (r ProductRequest) toInput() (service.ProductInput, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(r.Price))
	if err != nil {
		return service.ProductInput{}, err
	}
	input := service.ProductInput{
		Name:         r.Name,
		Price:        price,
		CategoryID:   r.CategoryID,
		CollectionID: r.CollectionID,
		IsActive:     true,
	}
	if r.IsActive != nil {
		input.IsActive = *r.IsActive
	}
	if raw := strings.TrimSpace(r.CommissionAmount); raw != "" {
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return service.ProductInput{}, err
		}
		input.CommissionAmount = &amount
	}
	return input, nil
}

// CreateProduct creates a catalog product.
func (h *Handler) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid payload", err)
		return
	}
	input, err := req.toInput()
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid amount", err)
		return
	}

	product, err := h.ProductService.CreateProduct(input)
	if err != nil {
		respondError(c, response.CodeInternal, "product create failed", err)
		return
	}
	response.Success(c, product)
}

// UpdateProduct updates a catalog product.
func (h *Handler) UpdateProduct(c *gin.Context) {
	productID, ok := paramUint(c, "id")
	if !ok {
		return
	}
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid payload", err)
		return
	}
	input, err := req.toInput()
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid amount", err)
		return
	}

	product, err := h.ProductService.UpdateProduct(productID, input)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "product not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "product update failed", err)
		return
	}
	response.Success(c, product)
}

// GetProduct returns one product with its category and collection.
func (h *Handler) GetProduct(c *gin.Context) {
	productID, ok := paramUint(c, "id")
	if !ok {
		return
	}
	product, err := h.ProductService.GetProduct(productID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "product not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "product fetch failed", err)
		return
	}
	response.Success(c, product)
}

// ListProducts lists catalog products.
func (h *Handler) ListProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.ProductListFilter{
		Keyword:  strings.TrimSpace(c.Query("search")),
		Page:     page,
		PageSize: pageSize,
	}
	if raw := strings.TrimSpace(c.Query("category_id")); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			filter.CategoryID = uint(id)
		}
	}
	if raw := strings.TrimSpace(c.Query("collection_id")); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			filter.CollectionID = uint(id)
		}
	}

	products, total, err := h.ProductService.ListProducts(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "product fetch failed", err)
		return
	}
	response.SuccessWithPage(c, products, response.BuildPagination(page, pageSize, total))
}

// PoolGroupRequest is the category/collection creation payload.
type PoolGroupRequest struct {
	Name             string `json:"name" binding:"required"`
	CommissionAmount string `json:"commission_amount"`
}

func (r PoolGroupRequest) amount() (*decimal.Decimal, error) {
	raw := strings.TrimSpace(r.CommissionAmount)
	if raw == "" {
		return nil, nil
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, err
	}
	return &amount, nil
}

// CreateCategory creates a category.
func (h *Handler) CreateCategory(c *gin.Context) {
	var req PoolGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid payload", err)
		return
	}
	amount, err := req.amount()
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid amount", err)
		return
	}

	category, err := h.ProductService.CreateCategory(req.Name, amount)
	if err != nil {
		respondError(c, response.CodeInternal, "category create failed", err)
		return
	}
	response.Success(c, category)
}

// CreateCollection creates a collection.
func (h *Handler) CreateCollection(c *gin.Context) {
	var req PoolGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid payload", err)
		return
	}
	amount, err := req.amount()
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid amount", err)
		return
	}

	collection, err := h.ProductService.CreateCollection(req.Name, amount)
	if err != nil {
		respondError(c, response.CodeInternal, "collection create failed", err)
		return
	}
	response.Success(c, collection)
}
