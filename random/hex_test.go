package random_test

import (
	"testing"

	"github.com/nasermirzaei89/blog/random"
	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	t.Parallel()

	s := random.String(4)

	assert.Len(t, s, 8)
	assert.NotEqual(t, s, random.String(4))
}

func TestKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []byte("configured"), random.Key("configured"))
	assert.Len(t, random.Key(""), 32)
	assert.NotEqual(t, random.Key(""), random.Key(""))
}
