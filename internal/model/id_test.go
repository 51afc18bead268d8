package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewIDStrictlyIncreasing(t *testing.T) {
	prev := NewID()
	for i := 0; i < 1000; i++ {
		id := NewID()
		assert.Greater(t, id, prev)
		prev = id
	}
}
