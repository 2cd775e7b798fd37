package repository

import (
	"errors"
	"strings"

	"github.com/3syncai/affiliate-portal-sub001/internal/constants"
	"github.com/3syncai/affiliate-portal-sub001/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ActorRepository is the data access interface for the four actor tiers.
type ActorRepository interface {
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) ActorRepository

	GetAgentByID(id uint) (*models.Agent, error)
	GetAgentByCode(code string) (*models.Agent, error)
	GetAgentsByCodes(codes []string) ([]models.Agent, error)
	ListAgents(filter ActorListFilter) ([]models.Agent, int64, error)
	ListAgentCodesByBranchAdmin(branchAdminID uint, branch string) ([]string, error)
	CreateAgent(agent *models.Agent) error
	UpdateAgent(agent *models.Agent) error

	GetBranchAdminByID(id uint) (*models.BranchAdmin, error)
	GetBranchAdminByCode(code string) (*models.BranchAdmin, error)
	FindBranchAdminByBranch(branch string) (*models.BranchAdmin, error)
	ListBranchAdmins(filter ActorListFilter) ([]models.BranchAdmin, int64, error)
	ListBranchAdminsByAreaManager(areaManagerID uint, city string) ([]models.BranchAdmin, error)
	CreateBranchAdmin(admin *models.BranchAdmin) error
	UpdateBranchAdmin(admin *models.BranchAdmin) error

	GetAreaManagerByID(id uint) (*models.AreaSalesManager, error)
	GetAreaManagerByCode(code string) (*models.AreaSalesManager, error)
	FindAreaManagerByCity(city string) (*models.AreaSalesManager, error)
	ListAreaManagers(filter ActorListFilter) ([]models.AreaSalesManager, int64, error)
	ListAreaManagersByStateAdmin(stateAdminID uint, state string) ([]models.AreaSalesManager, error)
	CreateAreaManager(manager *models.AreaSalesManager) error
	UpdateAreaManager(manager *models.AreaSalesManager) error

	GetStateAdminByID(id uint) (*models.StateAdmin, error)
	GetStateAdminByCode(code string) (*models.StateAdmin, error)
	FindStateAdminByState(state string) (*models.StateAdmin, error)
	ListStateAdmins(filter ActorListFilter) ([]models.StateAdmin, int64, error)
	CreateStateAdmin(admin *models.StateAdmin) error
	UpdateStateAdmin(admin *models.StateAdmin) error

	GetActorForUpdate(role string, id uint) (ActorWallet, error)
	AddWalletBalance(role string, id uint, delta models.Money) error
}

// ActorWallet is the tier-independent view of one actor's wallet row.
type ActorWallet struct {
	Role    string
	ID      uint
	Name    string
	Code    string
	Status  string
	Balance models.Money
}

// GormActorRepository is the GORM actor repository.
type GormActorRepository struct {
	db *gorm.DB
}

// NewActorRepository creates an actor repository.
func NewActorRepository(db *gorm.DB) *GormActorRepository {
	return &GormActorRepository{db: db}
}

// WithTx binds a transaction.
func (r *GormActorRepository) WithTx(tx *gorm.DB) ActorRepository {
	if tx == nil {
		return r
	}
	return &GormActorRepository{db: tx}
}

// Transaction runs fn inside a transaction.
func (r *GormActorRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// GetAgentByID returns an agent by ID.
func (r *GormActorRepository) GetAgentByID(id uint) (*models.Agent, error) {
	if id == 0 {
		return nil, nil
	}
	var agent models.Agent
	if err := r.db.Preload("BranchAdmin").First(&agent, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &agent, nil
}

// GetAgentByCode returns an agent by referral code.
func (r *GormActorRepository) GetAgentByCode(code string) (*models.Agent, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return nil, nil
	}
	var agent models.Agent
	if err := r.db.Preload("BranchAdmin").Where("referral_code = ?", normalized).First(&agent).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &agent, nil
}

// GetAgentsByCodes returns agents matching the referral codes.
func (r *GormActorRepository) GetAgentsByCodes(codes []string) ([]models.Agent, error) {
	if len(codes) == 0 {
		return []models.Agent{}, nil
	}
	normalized := make([]string, 0, len(codes))
	for _, code := range codes {
		trimmed := strings.ToUpper(strings.TrimSpace(code))
		if trimmed != "" {
			normalized = append(normalized, trimmed)
		}
	}
	var rows []models.Agent
	if err := r.db.Where("referral_code IN ?", normalized).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListAgents lists agents by filter.
func (r *GormActorRepository) ListAgents(filter ActorListFilter) ([]models.Agent, int64, error) {
	query := applyActorFilter(r.db.Model(&models.Agent{}), filter, true)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var rows []models.Agent
	if err := query.Order("id desc").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ListAgentCodesByBranchAdmin returns referral codes of the agents under
// one branch admin. Rows with a parent reference match by ID; legacy
// rows without one match by branch name, case-insensitively.
func (r *GormActorRepository) ListAgentCodesByBranchAdmin(branchAdminID uint, branch string) ([]string, error) {
	query := r.db.Model(&models.Agent{})
	branchName := strings.TrimSpace(branch)
	switch {
	case branchAdminID != 0 && branchName != "":
		query = query.Where("branch_admin_id = ? OR (branch_admin_id IS NULL AND LOWER(branch) = LOWER(?))", branchAdminID, branchName)
	case branchAdminID != 0:
		query = query.Where("branch_admin_id = ?", branchAdminID)
	case branchName != "":
		query = query.Where("LOWER(branch) = LOWER(?)", branchName)
	default:
		return []string{}, nil
	}

	var codes []string
	if err := query.Pluck("referral_code", &codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}

// CreateAgent creates an agent.
func (r *GormActorRepository) CreateAgent(agent *models.Agent) error {
	return r.db.Create(agent).Error
}

// UpdateAgent saves an agent.
func (r *GormActorRepository) UpdateAgent(agent *models.Agent) error {
	return r.db.Save(agent).Error
}

// GetBranchAdminByID returns a branch admin by ID.
func (r *GormActorRepository) GetBranchAdminByID(id uint) (*models.BranchAdmin, error) {
	if id == 0 {
		return nil, nil
	}
	var admin models.BranchAdmin
	if err := r.db.Preload("AreaManager").First(&admin, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &admin, nil
}

// GetBranchAdminByCode returns a branch admin by referral code.
func (r *GormActorRepository) GetBranchAdminByCode(code string) (*models.BranchAdmin, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return nil, nil
	}
	var admin models.BranchAdmin
	if err := r.db.Preload("AreaManager").Where("referral_code = ?", normalized).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &admin, nil
}

// FindBranchAdminByBranch matches a branch admin by branch name,
// case-insensitively.
func (r *GormActorRepository) FindBranchAdminByBranch(branch string) (*models.BranchAdmin, error) {
	branchName := strings.TrimSpace(branch)
	if branchName == "" {
		return nil, nil
	}
	var admin models.BranchAdmin
	if err := r.db.Where("LOWER(branch) = LOWER(?)", branchName).Order("id asc").First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &admin, nil
}

// ListBranchAdmins lists branch admins by filter.
func (r *GormActorRepository) ListBranchAdmins(filter ActorListFilter) ([]models.BranchAdmin, int64, error) {
	query := applyActorFilter(r.db.Model(&models.BranchAdmin{}), filter, true)
	if city := strings.TrimSpace(filter.City); city != "" {
		query = query.Where("LOWER(city) = LOWER(?)", city)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var rows []models.BranchAdmin
	if err := query.Order("id desc").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ListBranchAdminsByAreaManager returns the branch admins under one
// area manager, with the legacy city name fallback.
func (r *GormActorRepository) ListBranchAdminsByAreaManager(areaManagerID uint, city string) ([]models.BranchAdmin, error) {
	query := r.db.Model(&models.BranchAdmin{})
	cityName := strings.TrimSpace(city)
	switch {
	case areaManagerID != 0 && cityName != "":
		query = query.Where("area_manager_id = ? OR (area_manager_id IS NULL AND LOWER(city) = LOWER(?))", areaManagerID, cityName)
	case areaManagerID != 0:
		query = query.Where("area_manager_id = ?", areaManagerID)
	case cityName != "":
		query = query.Where("LOWER(city) = LOWER(?)", cityName)
	default:
		return []models.BranchAdmin{}, nil
	}

	var rows []models.BranchAdmin
	if err := query.Order("id asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CreateBranchAdmin creates a branch admin.
func (r *GormActorRepository) CreateBranchAdmin(admin *models.BranchAdmin) error {
	return r.db.Create(admin).Error
}

// UpdateBranchAdmin saves a branch admin.
func (r *GormActorRepository) UpdateBranchAdmin(admin *models.BranchAdmin) error {
	return r.db.Save(admin).Error
}

// GetAreaManagerByID returns an area sales manager by ID.
func (r *GormActorRepository) GetAreaManagerByID(id uint) (*models.AreaSalesManager, error) {
	if id == 0 {
		return nil, nil
	}
	var manager models.AreaSalesManager
	if err := r.db.Preload("StateAdmin").First(&manager, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &manager, nil
}

// GetAreaManagerByCode returns an area sales manager by referral code.
func (r *GormActorRepository) GetAreaManagerByCode(code string) (*models.AreaSalesManager, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return nil, nil
	}
	var manager models.AreaSalesManager
	if err := r.db.Preload("StateAdmin").Where("referral_code = ?", normalized).First(&manager).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &manager, nil
}

// FindAreaManagerByCity matches an area sales manager by city name,
// case-insensitively.
func (r *GormActorRepository) FindAreaManagerByCity(city string) (*models.AreaSalesManager, error) {
	cityName := strings.TrimSpace(city)
	if cityName == "" {
		return nil, nil
	}
	var manager models.AreaSalesManager
	if err := r.db.Where("LOWER(city) = LOWER(?)", cityName).Order("id asc").First(&manager).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &manager, nil
}

// ListAreaManagers lists area sales managers by filter.
func (r *GormActorRepository) ListAreaManagers(filter ActorListFilter) ([]models.AreaSalesManager, int64, error) {
	query := applyActorFilter(r.db.Model(&models.AreaSalesManager{}), filter, false)
	if city := strings.TrimSpace(filter.City); city != "" {
		query = query.Where("LOWER(city) = LOWER(?)", city)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var rows []models.AreaSalesManager
	if err := query.Order("id desc").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ListAreaManagersByStateAdmin returns the area managers under one
// state admin, with the legacy state name fallback.
func (r *GormActorRepository) ListAreaManagersByStateAdmin(stateAdminID uint, state string) ([]models.AreaSalesManager, error) {
	query := r.db.Model(&models.AreaSalesManager{})
	stateName := strings.TrimSpace(state)
	switch {
	case stateAdminID != 0 && stateName != "":
		query = query.Where("state_admin_id = ? OR (state_admin_id IS NULL AND LOWER(state) = LOWER(?))", stateAdminID, stateName)
	case stateAdminID != 0:
		query = query.Where("state_admin_id = ?", stateAdminID)
	case stateName != "":
		query = query.Where("LOWER(state) = LOWER(?)", stateName)
	default:
		return []models.AreaSalesManager{}, nil
	}

	var rows []models.AreaSalesManager
	if err := query.Order("id asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CreateAreaManager creates an area sales manager.
func (r *GormActorRepository) CreateAreaManager(manager *models.AreaSalesManager) error {
	return r.db.Create(manager).Error
}

// UpdateAreaManager saves an area sales manager.
func (r *GormActorRepository) UpdateAreaManager(manager *models.AreaSalesManager) error {
	return r.db.Save(manager).Error
}

// GetStateAdminByID returns a state admin by ID.
func (r *GormActorRepository) GetStateAdminByID(id uint) (*models.StateAdmin, error) {
	if id == 0 {
		return nil, nil
	}
	var admin models.StateAdmin
	if err := r.db.First(&admin, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &admin, nil
}

// GetStateAdminByCode returns a state admin by referral code.
func (r *GormActorRepository) GetStateAdminByCode(code string) (*models.StateAdmin, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return nil, nil
	}
	var admin models.StateAdmin
	if err := r.db.Where("referral_code = ?", normalized).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &admin, nil
}

// FindStateAdminByState matches a state admin by state name,
// case-insensitively.
func (r *GormActorRepository) FindStateAdminByState(state string) (*models.StateAdmin, error) {
	stateName := strings.TrimSpace(state)
	if stateName == "" {
		return nil, nil
	}
	var admin models.StateAdmin
	if err := r.db.Where("LOWER(state) = LOWER(?)", stateName).Order("id asc").First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &admin, nil
}

// ListStateAdmins lists state admins by filter.
func (r *GormActorRepository) ListStateAdmins(filter ActorListFilter) ([]models.StateAdmin, int64, error) {
	query := applyActorFilter(r.db.Model(&models.StateAdmin{}), filter, false)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var rows []models.StateAdmin
	if err := query.Order("id desc").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// CreateStateAdmin creates a state admin.
func (r *GormActorRepository) CreateStateAdmin(admin *models.StateAdmin) error {
	return r.db.Create(admin).Error
}

// UpdateStateAdmin saves a state admin.
func (r *GormActorRepository) UpdateStateAdmin(admin *models.StateAdmin) error {
	return r.db.Save(admin).Error
}

// GetActorForUpdate locks and returns the wallet row of one actor.
// Callers must already be inside a transaction.
func (r *GormActorRepository) GetActorForUpdate(role string, id uint) (ActorWallet, error) {
	wallet := ActorWallet{Role: role, ID: id}
	if id == 0 {
		return wallet, gorm.ErrRecordNotFound
	}
	locked := r.db.Clauses(clause.Locking{Strength: "UPDATE"})
	switch role {
	case constants.ActorRoleAgent:
		var row models.Agent
		if err := locked.First(&row, id).Error; err != nil {
			return wallet, err
		}
		wallet.Name, wallet.Code, wallet.Status, wallet.Balance = row.Name, row.ReferralCode, row.Status, row.WalletBalance
	case constants.ActorRoleBranchAdmin:
		var row models.BranchAdmin
		if err := locked.First(&row, id).Error; err != nil {
			return wallet, err
		}
		wallet.Name, wallet.Code, wallet.Status, wallet.Balance = row.Name, row.ReferralCode, row.Status, row.WalletBalance
	case constants.ActorRoleAreaManager:
		var row models.AreaSalesManager
		if err := locked.First(&row, id).Error; err != nil {
			return wallet, err
		}
		wallet.Name, wallet.Code, wallet.Status, wallet.Balance = row.Name, row.ReferralCode, row.Status, row.WalletBalance
	case constants.ActorRoleStateAdmin:
		var row models.StateAdmin
		if err := locked.First(&row, id).Error; err != nil {
			return wallet, err
		}
		wallet.Name, wallet.Code, wallet.Status, wallet.Balance = row.Name, row.ReferralCode, row.Status, row.WalletBalance
	default:
		return wallet, gorm.ErrRecordNotFound
	}
	return wallet, nil
}

// AddWalletBalance applies a signed delta to one actor's wallet.
func (r *GormActorRepository) AddWalletBalance(role string, id uint, delta models.Money) error {
	if id == 0 {
		return gorm.ErrRecordNotFound
	}
	model, err := actorModelForRole(role)
	if err != nil {
		return err
	}
	return r.db.Model(model).
		Where("id = ?", id).
		UpdateColumn("wallet_balance", gorm.Expr("wallet_balance + ?", delta.Decimal)).Error
}

func actorModelForRole(role string) (interface{}, error) {
	switch role {
	case constants.ActorRoleAgent:
		return &models.Agent{}, nil
	case constants.ActorRoleBranchAdmin:
		return &models.BranchAdmin{}, nil
	case constants.ActorRoleAreaManager:
		return &models.AreaSalesManager{}, nil
	case constants.ActorRoleStateAdmin:
		return &models.StateAdmin{}, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func applyActorFilter(query *gorm.DB, filter ActorListFilter, hasBranch bool) *gorm.DB {
	if branch := strings.TrimSpace(filter.Branch); hasBranch && branch != "" {
		query = query.Where("LOWER(branch) = LOWER(?)", branch)
	}
	if state := strings.TrimSpace(filter.State); state != "" {
		query = query.Where("LOWER(state) = LOWER(?)", state)
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		like := "%" + keyword + "%"
		query = query.Where("(name LIKE ? OR referral_code LIKE ?)", like, like)
	}
	return query
}
