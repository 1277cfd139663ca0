package utils

import "github.com/google/uuid"

// GenerateID returns a new random identifier for sessions and uploads.
func GenerateID() string {
	return uuid.New().String()
}
