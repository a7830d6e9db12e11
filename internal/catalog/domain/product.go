package domain

import (
	"slices"
	"time"
)

type Money struct {
	Currency string
	Amount   int64
}

type Product struct {
	ID          string
	Handle      string
	Name        string
	Category    string
	Description string
	Price       Money
	Sizes       []string
	Colors      []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Offers reports whether size and color are valid choices for p.
// Empty values are always accepted.
func (p Product) Offers(size, color string) bool {
	if size != "" && !slices.Contains(p.Sizes, size) {
		return false
	}
	if color != "" && !slices.Contains(p.Colors, color) {
		return false
	}
	return true
}
