package service

import (
	"strings"

	"github.com/3syncai/affiliate-portal-sub001/internal/models"
	"github.com/3syncai/affiliate-portal-sub001/internal/repository"
	"github.com/shopspring/decimal"
)

// ProductService manages the catalog that carries per-item commission
// pools.
type ProductService struct {
	repo repository.ProductRepository
}

// NewProductService creates the catalog service.
func NewProductService(repo repository.ProductRepository) *ProductService {
	return &ProductService{repo: repo}
}

// ProductInput is the create/update payload. A nil CommissionAmount
// means "inherit from category or collection".
type ProductInput struct {
	Name             string
	Price            decimal.Decimal
	CommissionAmount *decimal.Decimal
	CategoryID       *uint
	CollectionID     *uint
	IsActive         bool
}

// CreateProduct creates a product.
func (s *ProductService) CreateProduct(input ProductInput) (*models.Product, error) {
	product := &models.Product{
		Name:             strings.TrimSpace(input.Name),
		Price:            models.NewMoneyFromDecimal(input.Price),
		CommissionAmount: toMoneyPtr(input.CommissionAmount),
		CategoryID:       input.CategoryID,
		CollectionID:     input.CollectionID,
		IsActive:         input.IsActive,
	}
	if err := s.repo.CreateProduct(product); err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct applies the payload to one product.
func (s *ProductService) UpdateProduct(productID uint, input ProductInput) (*models.Product, error) {
	product, err := s.repo.GetProductByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrNotFound
	}
	product.Name = strings.TrimSpace(input.Name)
	product.Price = models.NewMoneyFromDecimal(input.Price)
	product.CommissionAmount = toMoneyPtr(input.CommissionAmount)
	product.CategoryID = input.CategoryID
	product.CollectionID = input.CollectionID
	product.IsActive = input.IsActive
	if err := s.repo.UpdateProduct(product); err != nil {
		return nil, err
	}
	return product, nil
}

// GetProduct returns one product.
func (s *ProductService) GetProduct(productID uint) (*models.Product, error) {
	product, err := s.repo.GetProductByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrNotFound
	}
	return product, nil
}

// ListProducts lists products.
func (s *ProductService) ListProducts(filter repository.ProductListFilter) ([]models.Product, int64, error) {
	return s.repo.ListProducts(filter)
}

// CreateCategory creates a category with an optional pool amount.
func (s *ProductService) CreateCategory(name string, commissionAmount *decimal.Decimal) (*models.Category, error) {
	category := &models.Category{
		Name:             strings.TrimSpace(name),
		CommissionAmount: toMoneyPtr(commissionAmount),
	}
	if err := s.repo.CreateCategory(category); err != nil {
		return nil, err
	}
	return category, nil
}

// CreateCollection creates a collection with an optional pool amount.
func (s *ProductService) CreateCollection(name string, commissionAmount *decimal.Decimal) (*models.Collection, error) {
	collection := &models.Collection{
		Name:             strings.TrimSpace(name),
		CommissionAmount: toMoneyPtr(commissionAmount),
	}
	if err := s.repo.CreateCollection(collection); err != nil {
		return nil, err
	}
	return collection, nil
}

func toMoneyPtr(amount *decimal.Decimal) *models.Money {
	if amount == nil {
		return nil
	}
	money := models.NewMoneyFromDecimal(*amount)
	return &money
}
