package service

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced to the transport layer. Validation and
// not-found conditions are detected before any mutation begins;
// anything failing mid-transaction rolls the whole unit back.
var (
	ErrInvalidQuantity    = errors.New("quantity must be positive")
	ErrRecipeNotFound     = errors.New("product has no registered recipe")
	ErrComponentNotFound  = errors.New("component not found")
	ErrMissingScrapReason = errors.New("scrap reason is required when scrap quantity > 0")
	ErrNoFieldsToUpdate   = errors.New("no fields to update")
)

// InvalidTransitionError rejects a state-machine action not present in
// the transition table, carrying the order's current status so the
// caller can act on it.
type InvalidTransitionError struct {
	Current string
	Action  string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("action %q is not allowed while order is %s", e.Action, e.Current)
}

// IsInvalidTransition reports whether err is a transition rejection.
func IsInvalidTransition(err error) bool {
	var ite *InvalidTransitionError
	return errors.As(err, &ite)
}
