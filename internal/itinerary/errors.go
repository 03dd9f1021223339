package itinerary

import "errors"

var (
	ErrValidation = errors.New("invalid itinerary edit")
	ErrNoTarget   = errors.New("no drop target")
)
