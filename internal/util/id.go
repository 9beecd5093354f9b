package util

import "github.com/google/uuid"

// NewID returns a random UUID string. All entity primary keys use this form.
func NewID() string {
	return uuid.NewString()
}
