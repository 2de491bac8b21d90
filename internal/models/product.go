package models

// Product represents a loan product (home, vehicle, gold, personal, ...)
type Product struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Sector string `json:"sector"`
}
