package domain

import "time"

// Medicine is one entry in the store catalog. Price and Stock are always
// numeric by the time a record reaches storage; the catalog service coerces
// whatever the client sent.
type Medicine struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
}

// CartLine is one medicine's quantity entry in the shopping cart. At most one
// line exists per medicine, and a quantity of zero is represented by the line
// being absent rather than stored.
type CartLine struct {
	MedicineID string    `json:"medicineId"`
	Quantity   int       `json:"quantity"`
	AddedAt    time.Time `json:"addedAt"`
}
