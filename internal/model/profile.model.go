package model

import "time"

// Profile is a user of the ledger. Profiles sharing a FamilyID see each
// other's financial records.
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	FamilyID  *string   `json:"family_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
