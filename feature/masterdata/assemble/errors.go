package assemble

import "errors"

var (
	// ErrMissingRecord means a required joined row is absent for an owner.
	ErrMissingRecord = errors.New("missing record")
	// ErrUnknownDeck means the card list does not fold into a legal deck.
	ErrUnknownDeck = errors.New("unrecognized card deck")
	// ErrSlotConflict means a skill slot received more than one row for the same state.
	ErrSlotConflict = errors.New("skill slot conflict")
	// ErrMalformedCost means a cost row's material and quantity lists differ in length.
	ErrMalformedCost = errors.New("malformed upgrade cost")
)
