package random

import (
	"crypto/rand"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

//nolint:paralleltest // swaps the package reader
func TestBytes_ReadError(t *testing.T) {
	errRead := errors.New("entropy exhausted")

	read = func([]byte) (int, error) {
		return 0, errRead
	}

	t.Cleanup(func() {
		read = rand.Read
	})

	assert.PanicsWithError(t, errRead.Error(), func() {
		Bytes(4)
	})
}
