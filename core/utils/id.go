package utils

import (
	gonanoid "github.com/matoous/go-nanoid/v2"

	"slotpoll/core/constants"
)

// GenerateEventID returns a short URL-safe identifier for a new event.
func GenerateEventID() string {
	id, err := gonanoid.Generate("0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz", constants.EventIDLength)
	if err != nil {
		return ""
	}
	return id
}
