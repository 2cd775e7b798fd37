package repository

import (
	"errors"
	"strings"

	"github.com/3syncai/affiliate-portal-sub001/internal/models"
	"gorm.io/gorm"
)

// ProductRepository is the catalog data access interface.
type ProductRepository interface {
	WithTx(tx *gorm.DB) ProductRepository

	GetProductByID(id uint) (*models.Product, error)
	ListProducts(filter ProductListFilter) ([]models.Product, int64, error)
	CreateProduct(product *models.Product) error
	UpdateProduct(product *models.Product) error

	GetCategoryByID(id uint) (*models.Category, error)
	CreateCategory(category *models.Category) error
	UpdateCategory(category *models.Category) error

	GetCollectionByID(id uint) (*models.Collection, error)
	CreateCollection(collection *models.Collection) error
	UpdateCollection(collection *models.Collection) error
}

// GormProductRepository is the GORM catalog repository.
type GormProductRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a catalog repository.
func NewProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// WithTx binds a transaction.
func (r *GormProductRepository) WithTx(tx *gorm.DB) ProductRepository {
	if tx == nil {
		return r
	}
	return &GormProductRepository{db: tx}
}

// GetProductByID returns a product with its category and collection.
func (r *GormProductRepository) GetProductByID(id uint) (*models.Product, error) {
	if id == 0 {
		return nil, nil
	}
	var product models.Product
	if err := r.db.Preload("Category").Preload("Collection").First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// ListProducts lists products by filter.
func (r *GormProductRepository) ListProducts(filter ProductListFilter) ([]models.Product, int64, error) {
	query := r.db.Model(&models.Product{}).Preload("Category").Preload("Collection")
	if filter.CategoryID != 0 {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if filter.CollectionID != 0 {
		query = query.Where("collection_id = ?", filter.CollectionID)
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		query = query.Where("name LIKE ?", "%"+keyword+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var rows []models.Product
	if err := query.Order("id desc").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// CreateProduct creates a product.
func (r *GormProductRepository) CreateProduct(product *models.Product) error {
	return r.db.Create(product).Error
}

// UpdateProduct saves a product.
func (r *GormProductRepository) UpdateProduct(product *models.Product) error {
	return r.db.Save(product).Error
}

// GetCategoryByID returns a category by ID.
func (r *GormProductRepository) GetCategoryByID(id uint) (*models.Category, error) {
	if id == 0 {
		return nil, nil
	}
	var category models.Category
	if err := r.db.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

// CreateCategory creates a category.
func (r *GormProductRepository) CreateCategory(category *models.Category) error {
	return r.db.Create(category).Error
}

// UpdateCategory saves a category.
func (r *GormProductRepository) UpdateCategory(category *models.Category) error {
	return r.db.Save(category).Error
}

// GetCollectionByID returns a collection by ID.
func (r *GormProductRepository) GetCollectionByID(id uint) (*models.Collection, error) {
	if id == 0 {
		return nil, nil
	}
	var collection models.Collection
	if err := r.db.First(&collection, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &collection, nil
}

// CreateCollection creates a collection.
func (r *GormProductRepository) CreateCollection(collection *models.Collection) error {
	return r.db.Create(collection).Error
}

// UpdateCollection saves a collection.
func (r *GormProductRepository) UpdateCollection(collection *models.Collection) error {
	return r.db.Save(collection).Error
}
