package services

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRequest      = errors.New("invalid request")
	ErrInvalidKind         = errors.New("unknown obligation kind")
	ErrNotFound            = errors.New("not found")
	ErrCardRequired        = errors.New("a card is required for credit card payments")
	ErrVirtualOccurrence   = errors.New("virtual occurrences cannot be changed; confirm it first")
	ErrNotEditable         = errors.New("occurrences of a fixed obligation are edited through the fixed obligation")
	ErrAlreadyMaterialized = errors.New("occurrence already confirmed for this month")
	ErrAlreadySettled      = errors.New("obligation is already settled")
	ErrNotSettled          = errors.New("obligation is not settled")
	ErrNotSettleable       = errors.New("obligation kind has no settlement")
	ErrConfirmInProgress   = errors.New("occurrence is being confirmed by another request")
	ErrInsufficientBalance = errors.New("insufficient piggy bank balance")
	ErrLinkedTransaction   = errors.New("card transaction belongs to a paid bill; reverse the bill instead")
)

func invalid(err error) error {
	return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
}
