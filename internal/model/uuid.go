package model

import "github.com/google/uuid"

// GenerateID creates a new random identifier.
func GenerateID() string {
	return uuid.New().String()
}
