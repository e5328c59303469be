package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrom(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("opcode 0x76", From("opcode 0x%02x", 0x76))
	assert.Equal("plain", From("plain"))
}
