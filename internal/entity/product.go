package entity

import "github.com/shopspring/decimal"

// Product is a row of the products table.
type Product struct {
	ID          int             `gorm:"primaryKey;autoIncrement"`
	Name        string          `gorm:"size:50;not null"`
	Description string          `gorm:"size:150;not null"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Category    string          `gorm:"size:20;not null;index"`
	ImageURL    string          `gorm:"column:image_url;size:255;not null"`
}

func (Product) TableName() string {
	return "products"
}
