package models

import "errors"

// Custom errors
var (
	ErrNotFound     = errors.New("record not found")
	ErrInvalidInput = errors.New("invalid prediction input")
	ErrUnknownSport = errors.New("unknown sport")
	ErrDuplicateKey = errors.New("duplicate key violation")
	ErrEmptySample  = errors.New("empty prediction sample")

	// ErrNotPersisted marks a prediction that was computed but could not
	// be saved. The record accompanies the error; retrying the save is
	// the caller's call.
	ErrNotPersisted = errors.New("prediction not persisted")
)
