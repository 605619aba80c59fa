// Package uuid wraps id generation behind an interface so tests can use
// predictable point-event ids.
package uuid

import "github.com/google/uuid"

// Generator produces unique string ids
type Generator interface {
	New() string
}

// Google generates random UUIDv4 strings
type Google struct{}

// NewGoogle creates a Google UUID generator
func NewGoogle() *Google {
	return &Google{}
}

func (*Google) New() string {
	return uuid.NewString()
}
