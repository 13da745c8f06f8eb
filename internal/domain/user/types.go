package user

import "time"

// Config controls optional policies of the user service.
type Config struct {
	// RejectDuplicateNames refuses creation when a user with the same name exists.
	RejectDuplicateNames bool
}

// User is the managed resource.
type User struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Department string    `json:"department"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Payload carries the mutable fields of a create or update call.
type Payload struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department"`
}
