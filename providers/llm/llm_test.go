package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractJSON(t *testing.T) {
	t.Run("bare object", func(t *testing.T) {
		assert.Equal(t, `{"a":1}`, ExtractJSON(`{"a":1}`))
	})

	t.Run("markdown fenced", func(t *testing.T) {
		in := "```json\n{\"days\":[]}\n```"
		assert.Equal(t, `{"days":[]}`, ExtractJSON(in))
	})

	t.Run("prose around the payload", func(t *testing.T) {
		in := `Here is your plan: {"days":[{"theme":"x"}]} hope it helps!`
		assert.Equal(t, `{"days":[{"theme":"x"}]}`, ExtractJSON(in))
	})

	t.Run("array payload", func(t *testing.T) {
		in := `the result is [1, 2, 3] as requested`
		assert.Equal(t, `[1, 2, 3]`, ExtractJSON(in))
	})

	t.Run("nested braces", func(t *testing.T) {
		in := `{"a":{"b":{"c":1}}} trailing`
		assert.Equal(t, `{"a":{"b":{"c":1}}}`, ExtractJSON(in))
	})

	t.Run("no json at all", func(t *testing.T) {
		assert.Empty(t, ExtractJSON("sorry, I cannot help with that"))
	})

	t.Run("unbalanced", func(t *testing.T) {
		assert.Empty(t, ExtractJSON(`{"a":`))
	})
}
