package util

import (
	"math/rand"
	"time"
)

const idAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// RandomID returns a short random identifier for naming experiments.
func RandomID() string {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	bs := make([]byte, 8)
	for i := range bs {
		bs[i] = idAlphabet[r.Intn(len(idAlphabet))]
	}
	return string(bs)
}
