package domain

import (
	"time"

	"github.com/google/uuid"
)

// Staff is a POS operator allowed to start checkouts for their store.
type Staff struct {
	ID          uuid.UUID `json:"id"`
	StoreID     uuid.UUID `json:"store_id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	PINHash     string    `json:"-"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
