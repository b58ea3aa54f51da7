package domain

import "time"

// User roles.
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// User is a registered account. Phone is unique across users. PasswordHash
// is a bcrypt hash; it is persisted under the legacy "password" key so the
// stored document layout is unchanged.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	PasswordHash string    `json:"password,omitempty"`
	Age          int       `json:"age,omitempty"`
	Address      string    `json:"address,omitempty"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ActivityEntry is one record in the append-only audit trail. Core operations
// only ever write it; nothing reads it back except the admin dashboard.
type ActivityEntry struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

// Settings holds the per-installation preferences.
type Settings struct {
	Language string `json:"language"`
	Theme    string `json:"theme"`
}

// DefaultSettings is the value seeded on first run.
func DefaultSettings() Settings {
	return Settings{Language: "en", Theme: "light"}
}
