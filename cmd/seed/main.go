// seed inserts development sample data for local testing.
// Idempotent: skips inserts when the dev user (dev@acme.com) already exists.
package main

import (
	"context"
	"log"
	"time"

	companydomain "cosmetic-compliance-platform/backend/internal/company/domain"
	companyrepo "cosmetic-compliance-platform/backend/internal/company/repository"
	compliancedomain "cosmetic-compliance-platform/backend/internal/compliance/domain"
	compliancerepo "cosmetic-compliance-platform/backend/internal/compliance/repository"
	"cosmetic-compliance-platform/backend/internal/config"
	"cosmetic-compliance-platform/backend/internal/db"
	productdomain "cosmetic-compliance-platform/backend/internal/product/domain"
	productrepo "cosmetic-compliance-platform/backend/internal/product/repository"
	"cosmetic-compliance-platform/backend/internal/security"
	userdomain "cosmetic-compliance-platform/backend/internal/user/domain"
	userrepo "cosmetic-compliance-platform/backend/internal/user/repository"
)

const (
	devEmail    = "dev@acme.com"
	devPassword = "DevPassw0rd!"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	dbConn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer dbConn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	users := userrepo.NewPostgresRepository(dbConn)
	existing, err := users.GetByEmail(ctx, devEmail)
	if err != nil {
		log.Fatalf("seed: check dev user: %v", err)
	}
	if existing != nil {
		log.Printf("seed: %s already exists, nothing to do", devEmail)
		return
	}

	companies := companyrepo.NewPostgresRepository(dbConn)
	company, err := companies.GetByDomain(ctx, "acme.com")
	if err != nil {
		log.Fatalf("seed: check company: %v", err)
	}
	if company == nil {
		company = &companydomain.Company{Name: "Acme Cosmetics", Domain: "acme.com"}
		if err := companies.Create(ctx, company); err != nil {
			log.Fatalf("seed: create company: %v", err)
		}
	}

	hasher := security.NewHasher(cfg.BcryptCost)
	hash, err := hasher.Hash([]byte(devPassword))
	if err != nil {
		log.Fatalf("seed: hash password: %v", err)
	}
	if err := users.Create(ctx, &userdomain.User{
		CompanyID:    company.ID,
		Email:        devEmail,
		PasswordHash: hash,
	}); err != nil {
		log.Fatalf("seed: create user: %v", err)
	}

	products := productrepo.NewPostgresRepository(dbConn)
	serum := &productdomain.Product{
		CompanyID:      company.ID,
		Name:           "Hydra Repair Serum",
		Type:           productdomain.TypeSkincare,
		FullIngredient: "water, glycerin, niacinamide, retinol",
		Status:         productdomain.StatusStep2,
	}
	if err := products.Create(ctx, serum); err != nil {
		log.Fatalf("seed: create product: %v", err)
	}

	logs := compliancerepo.NewPostgresRepository(dbConn)
	if err := logs.Create(ctx, &compliancedomain.Log{
		CompanyID:          company.ID,
		ProductID:          serum.ID,
		Country:            compliancedomain.CountryEU,
		ApprovalStatus:     compliancedomain.ApprovalMedium,
		CautiousIngredient: "retinol",
		IngredientLaw:      "EU 1223/2009 Annex III limits retinol concentration",
	}); err != nil {
		log.Fatalf("seed: create compliance log: %v", err)
	}

	log.Printf("seed: created company %q, user %s, and sample product data", company.Name, devEmail)
}
