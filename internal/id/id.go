// Package id generates identifiers for materials and ledger entries.
package id

import "github.com/google/uuid"

type ID = uuid.UUID

// New returns a time-ordered UUIDv7, falling back to V4.
func New() ID {
	v, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return v
}

func Parse(s string) (ID, error) {
	return uuid.Parse(s)
}

func IsNil(v ID) bool {
	return v == uuid.Nil
}
