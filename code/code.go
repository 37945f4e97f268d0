// Package code generates short human-friendly room codes.
package code

import (
	"math/rand"
	"strings"
)

// Ambiguous characters (0, O, I, l) are left out.
const letters = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

const Length = 6

func New() string {
	var b strings.Builder
	b.Grow(Length)
	for i := 0; i < Length; i++ {
		b.WriteByte(letters[rand.Intn(len(letters))])
	}
	return b.String()
}
