package models

import "time"

// Order references a catalog entry by its catalog id.
type Order struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ImageID   string    `gorm:"column:image_id;size:64;not null;index" json:"image_id"`
	OrderDate time.Time `gorm:"not null;default:now()" json:"order_date"`
}

// OrderView is an order joined with the entry it references.
type OrderView struct {
	ID         uint      `json:"id"`
	ImageID    string    `json:"image_id"`
	OrderDate  time.Time `json:"order_date"`
	CatalogID  string    `json:"catalog_id"`
	Resolution float64   `json:"resolution"`
}

// OrderFilter narrows the order listing. Zero values are ignored; the date
// bounds are inclusive.
type OrderFilter struct {
	ImageID   string
	StartDate *time.Time
	EndDate   *time.Time
}
