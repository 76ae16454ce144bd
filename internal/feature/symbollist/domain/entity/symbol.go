// Package entity defines the domain models for the symbollist feature.
package entity

import "time"

// Symbol represents a ticker in the local catalog.
// The catalog mirrors the market-data provider's reference list and is used to
// answer existence checks without a remote call.
type Symbol struct {
	ID        uint      `gorm:"primaryKey"`
	Code      string    `gorm:"size:20;not null;uniqueIndex"`
	Name      string    `gorm:"size:255;not null"`
	Market    string    `gorm:"size:100;not null"`
	Exchange  string    `gorm:"size:10"` // MIC of the primary exchange, e.g. XNAS
	Type      string    `gorm:"size:20"` // Security type, e.g. CS or ETF
	IsActive  bool      `gorm:"not null;default:true"`
	SortKey   int       `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}
