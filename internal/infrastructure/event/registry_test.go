package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandlerRegistry(t *testing.T) {
	r := NewHandlerRegistry()
	typed := newRecordingHandler()
	both := newRecordingHandler()
	wildcard := newRecordingHandler()

	r.Register(typed, "a")
	r.Register(both, "a", "b")
	r.Register(wildcard)

	t.Run("typed handlers come before wildcard ones", func(t *testing.T) {
		handlers := r.GetHandlers("a")
		assert.Len(t, handlers, 3)
		assert.Same(t, typed, handlers[0])
		assert.Same(t, wildcard, handlers[2])
	})

	t.Run("unknown type gets only wildcard handlers", func(t *testing.T) {
		assert.Len(t, r.GetHandlers("zzz"), 1)
	})

	t.Run("count is distinct handlers", func(t *testing.T) {
		assert.Equal(t, 3, r.Count())
	})

	t.Run("unregister removes every registration", func(t *testing.T) {
		r.Unregister(both)
		assert.Len(t, r.GetHandlers("a"), 2)
		assert.Len(t, r.GetHandlers("b"), 1)
		assert.Equal(t, 2, r.Count())

		r.Unregister(wildcard)
		assert.Empty(t, r.GetHandlers("b"))
	})
}
