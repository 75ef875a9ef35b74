package database

import (
	"context"
	"fmt"

	"carvedrock/internal/entity"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SampleProducts is the catalog written by Seed into an empty store.
func SampleProducts() []entity.Product {
	return []entity.Product{
		{
			Name:        "Lightweight Kayak",
			Description: "A lightweight kayak for calm lakes and slow rivers.",
			Price:       decimal.RequireFromString("299.99"),
			Category:    "kayak",
			ImageURL:    "https://www.pluralsight.com/content/dam/pluralsight2/teach/author-tools/carved-rock-fitness/img-kayak.jpg",
		},
		{
			Name:        "Trail Runner",
			Description: "Grippy, comfortable trail running shoe.",
			Price:       decimal.RequireFromString("129.95"),
			Category:    "boots",
			ImageURL:    "https://www.pluralsight.com/content/dam/pluralsight2/teach/author-tools/carved-rock-fitness/img-shoe.jpg",
		},
		{
			Name:        "Climbing Harness",
			Description: "Adjustable harness for sport and trad climbing.",
			Price:       decimal.RequireFromString("79.50"),
			Category:    "equip",
			ImageURL:    "https://www.pluralsight.com/content/dam/pluralsight2/teach/author-tools/carved-rock-fitness/img-harness.jpg",
		},
		{
			Name:        "Expedition Boot",
			Description: "Insulated, waterproof boot for long days on snow.",
			Price:       decimal.RequireFromString("249.00"),
			Category:    "boots",
			ImageURL:    "https://www.pluralsight.com/content/dam/pluralsight2/teach/author-tools/carved-rock-fitness/img-brownboots.jpg",
		},
	}
}

// Seed inserts the sample catalog when the products table is empty.
// It returns the number of rows written.
func Seed(ctx context.Context, db *gorm.DB, logger *zap.Logger) (int, error) {
	var count int64
	if err := db.WithContext(ctx).Model(&entity.Product{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}

	if count > 0 {
		logger.Info("Products already present, skipping seed", zap.Int64("count", count))
		return 0, nil
	}

	products := SampleProducts()
	if err := db.WithContext(ctx).Create(&products).Error; err != nil {
		return 0, fmt.Errorf("failed to seed products: %w", err)
	}

	logger.Info("Seeded sample products", zap.Int("count", len(products)))
	return len(products), nil
}
