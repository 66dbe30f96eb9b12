package model

import "time"

const (
	ProductTypeStreamGraphics  = "streamgraphics"
	ProductTypeCharacterDesign = "characterdesign"
)

// Product is a local mirror of a catalog entry in the CMS, refreshed by the
// catalog sync endpoints. SanityID ties the row back to its CMS document.
type Product struct {
	ID          string  `gorm:"primaryKey;size:64;not null"`
	SanityID    string  `gorm:"size:64;uniqueIndex;not null"`
	Title       string  `gorm:"size:255;not null"`
	Category    string  `gorm:"size:64;index;not null"`
	SubType     string  `gorm:"size:32;default:static"`
	Price       float64 `gorm:"not null"`
	Image       string  `gorm:"size:512"`
	ProductType string  `gorm:"size:32;index;not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
