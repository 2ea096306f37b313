package clipboard

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemoryWriter(t *testing.T) {
	var w Writer = NewMemory(nil)
	assert.NoError(t, w.WriteAll("hello"))
	assert.Equal(t, "hello", w.(*Memory).Last())

	failing := NewMemory(errors.New("no display"))
	assert.Error(t, failing.WriteAll("lost"))
	assert.Equal(t, "", failing.Last())
}
