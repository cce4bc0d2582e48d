package store

import (
	"strings"

	"github.com/google/uuid"
)

// idLength is short enough to type on the command line while leaving
// 16^8 possibilities, so collisions stay in collision-retry territory.
const idLength = 8

// newID returns a short random identifier derived from a v4 UUID.
func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:idLength]
}
