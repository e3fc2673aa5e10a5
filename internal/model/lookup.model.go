package model

// PaymentType is a user-defined payment mechanism. Bills paid with a type
// flagged IsCreditCard produce a card transaction on confirmation.
type PaymentType struct {
	ID           string `json:"id"`
	UserID       string `json:"user_id"`
	Name         string `json:"name"`
	IsCreditCard bool   `json:"is_credit_card"`
}

type Category struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Kind   Kind   `json:"kind"`
}
