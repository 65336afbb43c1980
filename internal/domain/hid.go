package domain

import (
	"crypto/rand"
	"fmt"
	"io"
)

const (
	HIDLength   = 5
	hidAlphabet = "abcdefghijklmnopqrstuvwxyz"
	// bytes at or above hidByteLimit are redrawn so every letter is equally likely
	hidByteLimit = 256 - 256%len(hidAlphabet)
)

// NewHID returns a random public identifier of HIDLength lowercase letters.
// Uniqueness is enforced by the store, which retries on collision.
func NewHID() (string, error) {
	return newHID(rand.Reader)
}

func newHID(r io.Reader) (string, error) {
	out := make([]byte, 0, HIDLength)
	buf := make([]byte, HIDLength)
	for len(out) < HIDLength {
		n, err := io.ReadFull(r, buf[:HIDLength-len(out)])
		if err != nil {
			return "", fmt.Errorf("generate hid: %w", err)
		}
		for _, b := range buf[:n] {
			if int(b) >= hidByteLimit {
				continue
			}
			out = append(out, hidAlphabet[int(b)%len(hidAlphabet)])
		}
	}
	return string(out), nil
}

func IsValidHID(hid string) bool {
	if len(hid) != HIDLength {
		return false
	}
	for i := 0; i < len(hid); i++ {
		if hid[i] < 'a' || hid[i] > 'z' {
			return false
		}
	}
	return true
}
