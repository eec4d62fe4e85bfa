package result

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuccess(t *testing.T) {
	r := Success(42)

	assert.True(t, r.IsSuccess())
	assert.False(t, r.IsFailure())
	assert.Equal(t, 42, r.Value())
	assert.Empty(t, r.Reason())

	v, ok := r.Get()
	assert.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestFailure(t *testing.T) {
	r := Failure[string]("Post does not exist")

	assert.True(t, r.IsFailure())
	assert.Equal(t, "Post does not exist", r.Reason())
	assert.Equal(t, "Failure(Post does not exist)", r.String())

	_, ok := r.Get()
	assert.False(t, ok)
}

func TestFailure_ValuePanics(t *testing.T) {
	r := Failure[int]("nope")
	assert.Panics(t, func() { _ = r.Value() })
}

func TestZeroValueIsFailure(t *testing.T) {
	var r Result[[]string]
	assert.True(t, r.IsFailure())
}
