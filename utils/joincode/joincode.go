package joincode

import gonanoid "github.com/matoous/go-nanoid/v2"

// Length of generated join codes.
const Length = 10

// New returns a random URL-safe join code for a private team.
func New() (string, error) {
	return gonanoid.New(Length)
}
