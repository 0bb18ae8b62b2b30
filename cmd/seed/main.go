package main

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"petclinic/internal/config"
	"petclinic/internal/database"
	"petclinic/internal/domain"
	jwtsvc "petclinic/internal/pkg/jwt"
	"petclinic/internal/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logger.Init(cfg.App.Env, cfg.App.LogLevel)

	db, err := database.Connect(cfg.DB.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("DB connection failed")
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate failed")
	}

	log.Info().Msg("cleaning old data")
	// Children first.
	for _, table := range []string{
		"loyalty_transactions",
		"invoice_items",
		"invoices",
		"booking_history",
		"bookings",
		"pets",
		"customers",
		"employees",
		"branches",
		"products",
		"services",
	} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			log.Fatal().Err(err).Str("table", table).Msg("cleanup failed")
		}
	}

	var staff []domain.Employee
	err = db.Transaction(func(tx *gorm.DB) error {
		var err error
		staff, err = seed(tx)
		return err
	})
	if err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}

	tokens := jwtsvc.New(cfg.JWT.Secret, cfg.JWT.TTL)
	fmt.Println()
	fmt.Println("Development tokens:")
	for _, e := range staff {
		tok, err := tokens.GenerateToken(e.ID, e.BranchID, string(e.Role))
		if err != nil {
			log.Fatal().Err(err).Msg("issue token")
		}
		fmt.Printf("  %-14s %-22s branch=%d\n    %s\n", e.Role, e.FullName, e.BranchID, tok)
	}
	log.Info().Msg("seed completed")
}

func seed(tx *gorm.DB) ([]domain.Employee, error) {
	branches := []domain.Branch{
		{Name: "Central Clinic", Address: "12 Abay Ave"},
		{Name: "Riverside Clinic", Address: "5 Dostyk St"},
	}
	if err := tx.Create(&branches).Error; err != nil {
		return nil, err
	}
	log.Info().Int("count", len(branches)).Msg("branches created")

	var staff []domain.Employee
	for i, b := range branches {
		staff = append(staff,
			domain.Employee{BranchID: b.ID, FullName: fmt.Sprintf("Dr. Aliya %d", i+1), Role: domain.RoleDoctor, Active: true},
			domain.Employee{BranchID: b.ID, FullName: fmt.Sprintf("Dr. Timur %d", i+1), Role: domain.RoleDoctor, Active: true},
			domain.Employee{BranchID: b.ID, FullName: fmt.Sprintf("Desk %d", i+1), Role: domain.RoleReceptionist, Active: true},
		)
	}
	staff = append(staff, domain.Employee{BranchID: branches[0].ID, FullName: "Manager Dana", Role: domain.RoleManager, Active: true})
	if err := tx.Create(&staff).Error; err != nil {
		return nil, err
	}
	// Inactive doctors are never picked by assignment.
	retired := domain.Employee{BranchID: branches[0].ID, FullName: "Dr. Retired", Role: domain.RoleDoctor, Active: false}
	if err := tx.Create(&retired).Error; err != nil {
		return nil, err
	}
	log.Info().Int("count", len(staff)+1).Msg("employees created")

	customers := []domain.Customer{
		{FullName: "Asel Nurlan", Phone: "+7 777 123 4567", Email: "asel@mail.kz"},
		{FullName: "Bekzat Omar", Phone: "+7 777 123 4568", Email: "bekzat@gmail.com"},
		{FullName: "Dina Serik", Phone: "+7 777 123 4569", Email: "dina@yandex.kz"},
	}
	if err := tx.Create(&customers).Error; err != nil {
		return nil, err
	}

	pets := []domain.Pet{
		{CustomerID: customers[0].ID, Name: "Barsik", Species: "Cat", Breed: "British Shorthair"},
		{CustomerID: customers[0].ID, Name: "Rex", Species: "Dog", Breed: "Husky"},
		{CustomerID: customers[1].ID, Name: "Kesha", Species: "Bird", Breed: "Budgerigar"},
		{CustomerID: customers[2].ID, Name: "Tuzik", Species: "Dog", Breed: "Mixed"},
	}
	if err := tx.Create(&pets).Error; err != nil {
		return nil, err
	}
	log.Info().Int("customers", len(customers)).Int("pets", len(pets)).Msg("customers created")

	products := []domain.Product{
		{Name: "Dry food 2kg", Price: decimal.RequireFromString("8500")},
		{Name: "Flea collar", Price: decimal.RequireFromString("4200")},
		{Name: "Leash", Price: decimal.RequireFromString("3000")},
	}
	if err := tx.Create(&products).Error; err != nil {
		return nil, err
	}
	services := []domain.Service{
		{Name: "General check-up", Price: decimal.RequireFromString("6000")},
		{Name: "Rabies vaccination", Price: decimal.RequireFromString("7500")},
		{Name: "Spay surgery", Price: decimal.RequireFromString("45000")},
	}
	if err := tx.Create(&services).Error; err != nil {
		return nil, err
	}
	log.Info().Int("products", len(products)).Int("services", len(services)).Msg("catalog created")

	doctor := staff[0].ID
	bookings := []domain.Booking{
		{
			CustomerID:  customers[0].ID,
			PetID:       pets[0].ID,
			BranchID:    &branches[0].ID,
			BookingType: "CheckHealth",
			RequestedAt: time.Now().UTC().Add(24 * time.Hour).Truncate(time.Hour),
			Status:      domain.BookingConfirmed,
			DoctorID:    &doctor,
		},
		{
			CustomerID:  customers[2].ID,
			PetID:       pets[3].ID,
			BranchID:    &branches[0].ID,
			BookingType: "Vaccination",
			RequestedAt: time.Now().UTC().Add(48 * time.Hour).Truncate(time.Hour),
			Status:      domain.BookingPending,
		},
	}
	if err := tx.Create(&bookings).Error; err != nil {
		return nil, err
	}
	log.Info().Int("count", len(bookings)).Msg("bookings created")

	return staff, nil
}
