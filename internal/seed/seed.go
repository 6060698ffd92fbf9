package seed

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/sweetshop/backend/internal/hash"
	"github.com/sweetshop/backend/internal/models"
)

// Run makes sure the bootstrap admin exists and fills an empty catalog
// with sample sweets.
func Run(db *gorm.DB, adminEmail, adminPassword string) error {
	var admin models.User
	err := db.Where("email = ?", adminEmail).First(&admin).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		passwordHash, err := hash.HashPassword(adminPassword)
		if err != nil {
			return fmt.Errorf("seed: hash admin password: %w", err)
		}
		admin = models.User{
			Email:        adminEmail,
			PasswordHash: passwordHash,
			IsAdmin:      true,
		}
		if err := db.Create(&admin).Error; err != nil {
			return fmt.Errorf("seed: create admin: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("seed: lookup admin: %w", err)
	}

	var count int64
	if err := db.Model(&models.Sweet{}).Count(&count).Error; err != nil {
		return fmt.Errorf("seed: count sweets: %w", err)
	}
	if count > 0 {
		return nil
	}

	sweets := []models.Sweet{
		{Name: "Chocolate Bar", Category: "Chocolate", Price: 2.50, Quantity: 50},
		{Name: "Gummy Bears", Category: "Gummies", Price: 3.00, Quantity: 30},
		{Name: "Lollipop", Category: "Hard Candy", Price: 1.50, Quantity: 100},
		{Name: "Jelly Beans", Category: "Gummies", Price: 2.75, Quantity: 40},
		{Name: "Caramel", Category: "Caramel", Price: 2.00, Quantity: 60},
	}
	if err := db.Create(&sweets).Error; err != nil {
		return fmt.Errorf("seed: create sweets: %w", err)
	}

	return nil
}
