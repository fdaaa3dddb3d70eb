package app

import "github.com/google/uuid"

// NewID returns a prefixed random identifier such as "card_6f1c...".
func NewID(prefix string) string {
	return prefix + "_" + uuid.NewString()
}
