package main

import (
	"github.com/3syncai/affiliate-portal-sub001/internal/config"
	"github.com/3syncai/affiliate-portal-sub001/internal/constants"
	"github.com/3syncai/affiliate-portal-sub001/internal/logger"
	"github.com/3syncai/affiliate-portal-sub001/internal/models"

	"github.com/shopspring/decimal"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	seedRates(stdLog.Printf)
	stateAdminID := seedStateAdmin(stdLog.Printf)
	areaManagerID := seedAreaManager(stdLog.Printf, stateAdminID)
	branchAdminID := seedBranchAdmin(stdLog.Printf, areaManagerID)
	seedAgents(stdLog.Printf, branchAdminID)
	seedCatalog(stdLog.Printf)

	stdLog.Printf("Seed complete")
}

func seedRates(printf func(string, ...interface{})) {
	rates := map[string]int64{
		constants.RoleTypeAffiliate:    constants.DefaultRateAffiliate,
		constants.RoleTypeBranchDirect: constants.DefaultRateBranchDirect,
		constants.RoleTypeBranch:       constants.DefaultRateBranch,
		constants.RoleTypeArea:         constants.DefaultRateArea,
		constants.RoleTypeState:        constants.DefaultRateState,
	}
	for roleType, percentage := range rates {
		var existing models.CommissionRate
		if err := models.DB.Where("role_type = ?", roleType).First(&existing).Error; err == nil {
			printf("Rate already exists: %s", roleType)
			continue
		}
		rate := models.CommissionRate{
			RoleType:   roleType,
			Percentage: models.NewMoneyFromDecimal(decimal.NewFromInt(percentage)),
		}
		if err := models.DB.Create(&rate).Error; err != nil {
			printf("Failed to create rate %s: %v", roleType, err)
		} else {
			printf("Created rate: %s = %d%%", roleType, percentage)
		}
	}
}

func seedStateAdmin(printf func(string, ...interface{})) uint {
	var existing models.StateAdmin
	if err := models.DB.Where("referral_code = ?", "KA0001").First(&existing).Error; err == nil {
		printf("State admin already exists: %s", existing.ReferralCode)
		return existing.ID
	}
	admin := models.StateAdmin{
		Name:         "Karnataka State Admin",
		ReferralCode: "KA0001",
		State:        "Karnataka",
		Status:       constants.ActorStatusActive,
	}
	if err := models.DB.Create(&admin).Error; err != nil {
		printf("Failed to create state admin: %v", err)
		return 0
	}
	printf("Created state admin: %s", admin.ReferralCode)
	return admin.ID
}

func seedAreaManager(printf func(string, ...interface{}), stateAdminID uint) uint {
	var existing models.AreaSalesManager
	if err := models.DB.Where("referral_code = ?", "BLR001").First(&existing).Error; err == nil {
		printf("Area manager already exists: %s", existing.ReferralCode)
		return existing.ID
	}
	manager := models.AreaSalesManager{
		Name:         "Bengaluru Area Manager",
		ReferralCode: "BLR001",
		City:         "Bengaluru",
		State:        "Karnataka",
		Status:       constants.ActorStatusActive,
	}
	if stateAdminID != 0 {
		manager.StateAdminID = &stateAdminID
	}
	if err := models.DB.Create(&manager).Error; err != nil {
		printf("Failed to create area manager: %v", err)
		return 0
	}
	printf("Created area manager: %s", manager.ReferralCode)
	return manager.ID
}

func seedBranchAdmin(printf func(string, ...interface{}), areaManagerID uint) uint {
	var existing models.BranchAdmin
	if err := models.DB.Where("referral_code = ?", "INDR01").First(&existing).Error; err == nil {
		printf("Branch admin already exists: %s", existing.ReferralCode)
		return existing.ID
	}
	admin := models.BranchAdmin{
		Name:         "Indiranagar Branch Admin",
		ReferralCode: "INDR01",
		Branch:       "Indiranagar",
		City:         "Bengaluru",
		State:        "Karnataka",
		Status:       constants.ActorStatusActive,
	}
	if areaManagerID != 0 {
		admin.AreaManagerID = &areaManagerID
	}
	if err := models.DB.Create(&admin).Error; err != nil {
		printf("Failed to create branch admin: %v", err)
		return 0
	}
	printf("Created branch admin: %s", admin.ReferralCode)
	return admin.ID
}

func seedAgents(printf func(string, ...interface{}), branchAdminID uint) {
	agents := []models.Agent{
		{Name: "Asha Rao", ReferralCode: "ASHA01", Branch: "Indiranagar", State: "Karnataka", Status: constants.ActorStatusActive},
		{Name: "Vikram Shetty", ReferralCode: "VIKR01", Branch: "Indiranagar", State: "Karnataka", Status: constants.ActorStatusActive},
	}
	for _, agent := range agents {
		var existing models.Agent
		if err := models.DB.Where("referral_code = ?", agent.ReferralCode).First(&existing).Error; err == nil {
			printf("Agent already exists: %s", agent.ReferralCode)
			continue
		}
		if branchAdminID != 0 {
			id := branchAdminID
			agent.BranchAdminID = &id
		}
		if err := models.DB.Create(&agent).Error; err != nil {
			printf("Failed to create agent %s: %v", agent.ReferralCode, err)
		} else {
			printf("Created agent: %s", agent.ReferralCode)
		}
	}
}

func seedCatalog(printf func(string, ...interface{})) {
	collectionPool := models.NewMoneyFromDecimal(decimal.NewFromInt(60))
	collection := models.Collection{Name: "Festive Hampers", CommissionAmount: &collectionPool}
	var existingCollection models.Collection
	if err := models.DB.Where("name = ?", collection.Name).First(&existingCollection).Error; err != nil {
		if err := models.DB.Create(&collection).Error; err != nil {
			printf("Failed to create collection: %v", err)
		} else {
			printf("Created collection: %s", collection.Name)
			existingCollection = collection
		}
	}

	categoryPool := models.NewMoneyFromDecimal(decimal.NewFromInt(80))
	category := models.Category{Name: "Dry Fruits", CommissionAmount: &categoryPool}
	var existingCategory models.Category
	if err := models.DB.Where("name = ?", category.Name).First(&existingCategory).Error; err != nil {
		if err := models.DB.Create(&category).Error; err != nil {
			printf("Failed to create category: %v", err)
		} else {
			printf("Created category: %s", category.Name)
			existingCategory = category
		}
	}

	productPool := models.NewMoneyFromDecimal(decimal.NewFromInt(100))
	products := []models.Product{
		{
			Name:             "Premium Almond Box 1kg",
			Price:            models.NewMoneyFromDecimal(decimal.NewFromInt(1499)),
			CommissionAmount: &productPool,
			IsActive:         true,
		},
		{
			Name:     "Cashew Gift Pack 500g",
			Price:    models.NewMoneyFromDecimal(decimal.NewFromInt(899)),
			IsActive: true,
		},
	}
	for i := range products {
		if existingCategory.ID != 0 {
			id := existingCategory.ID
			products[i].CategoryID = &id
		}
		if existingCollection.ID != 0 {
			id := existingCollection.ID
			products[i].CollectionID = &id
		}
		var existing models.Product
		if err := models.DB.Where("name = ?", products[i].Name).First(&existing).Error; err == nil {
			printf("Product already exists: %s", products[i].Name)
			continue
		}
		if err := models.DB.Create(&products[i]).Error; err != nil {
			printf("Failed to create product %s: %v", products[i].Name, err)
		} else {
			printf("Created product: %s", products[i].Name)
		}
	}
}
