package main

import (
	"context"
	"errors"
	"log"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/storefront/backend/internal/config"
	"github.com/storefront/backend/internal/hash"
	"github.com/storefront/backend/internal/models"
	"github.com/storefront/backend/pkg/db"
)

var sampleProducts = []struct {
	Name     string
	Price    string
	ImageURL string
}{
	{"Remera basica", "7990", "https://images.unsplash.com/photo-1521572163474-6864f9cf17ab?auto=format&fit=crop&w=800&q=80"},
	{"Zapatillas urbanas", "42990", "https://images.unsplash.com/photo-1542291026-7eec264c27ff?auto=format&fit=crop&w=800&q=80"},
	{"Mochila compacta", "18990", "https://images.unsplash.com/photo-1521572163474-6864f9cf17ab?auto=format&fit=crop&w=800&q=80"},
	{"Gorra street", "6990", "https://images.unsplash.com/photo-1521572163474-6864f9cf17ab?auto=format&fit=crop&w=800&q=80"},
	{"Campera liviana", "55990", "https://images.unsplash.com/photo-1521572163474-6864f9cf17ab?auto=format&fit=crop&w=800&q=80"},
}

func seedUser(database *gorm.DB, username, password string, isStaff bool) error {
	var existing models.User
	err := database.Where("username = ?", username).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	passwordHash, err := hash.HashPassword(password)
	if err != nil {
		return err
	}
	user := models.User{
		Username:     username,
		PasswordHash: passwordHash,
		IsStaff:      isStaff,
	}
	return database.Create(&user).Error
}

func seedProducts(database *gorm.DB) (int, error) {
	created := 0
	for _, sample := range sampleProducts {
		price, err := decimal.NewFromString(sample.Price)
		if err != nil {
			return created, err
		}

		var product models.Product
		err = database.Where("name = ?", sample.Name).First(&product).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			product = models.Product{Name: sample.Name, Price: price, ImageURL: sample.ImageURL}
			if err := database.Create(&product).Error; err != nil {
				return created, err
			}
			created++
			continue
		}
		if err != nil {
			return created, err
		}

		product.Price = price
		product.ImageURL = sample.ImageURL
		if err := database.Save(&product).Error; err != nil {
			return created, err
		}
	}
	return created, nil
}

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	database, err := db.Open(context.Background(), configuration.DATABASE_URL)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	if err := db.Migrate(database); err != nil {
		log.Fatalf("db migrate error: %v", err)
	}

	if err := seedUser(database, "admin", "admin123", true); err != nil {
		log.Fatalf("seed staff user: %v", err)
	}
	if err := seedUser(database, "demo", "demo123", false); err != nil {
		log.Fatalf("seed demo user: %v", err)
	}

	created, err := seedProducts(database)
	if err != nil {
		log.Fatalf("seed products: %v", err)
	}

	log.Printf("seed complete: %d products created", created)
}
