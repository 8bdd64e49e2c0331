package models

import gonanoid "github.com/matoous/go-nanoid/v2"

// Key sizes match the wire format clients already store.
const (
	UserKeySize    = 24
	CreatorKeySize = 24
	StoryKeySize   = 28
	PostKeySize    = 30
	RowKeySize     = 40
	SlugKeySize    = 60
)

// NewKey generates an opaque, collision-resistant identifier. Keys are
// assigned once at creation and never reused for relational plumbing.
func NewKey(size int) string {
	key, err := gonanoid.New(size)
	if err != nil {
		// crypto/rand failure; nothing sensible to do.
		panic(err)
	}
	return key
}
