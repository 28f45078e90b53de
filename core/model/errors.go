package model

import "errors"

var (
	ErrIdentifierOverflow = errors.New("kitty index overflow")
	ErrNotOwner           = errors.New("not owner")
	ErrInvalidIndex       = errors.New("invalid kitty index")
	ErrSameParent         = errors.New("same parent index")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrNotListed          = errors.New("kitty not listed")
)

