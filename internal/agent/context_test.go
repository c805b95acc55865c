package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextSetGetRoundTrip(t *testing.T) {
	c := NewContext()
	require.NoError(t, c.Set("user_id", "u-42"))

	var got string
	ok, err := c.Get("user_id", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "u-42", got)
}

func TestContextGetAbsentKey(t *testing.T) {
	c := NewContext()
	var got string
	ok, err := c.Get("missing", &got)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "", got)
}

func TestContextGetStringConvenience(t *testing.T) {
	c := NewContext()
	require.NoError(t, c.Set("timezone", "UTC"))
	assert.Equal(t, "UTC", c.GetString("timezone"))
	assert.Equal(t, "", c.GetString("nope"))
}

func TestContextHasAndDelete(t *testing.T) {
	c := NewContext()
	require.NoError(t, c.Set("k", 1))
	assert.True(t, c.Has("k"))
	c.Delete("k")
	assert.False(t, c.Has("k"))
}

func TestContextCloneIsIndependent(t *testing.T) {
	c := NewContext()
	require.NoError(t, c.Set("shared", 1))

	clone := c.Clone()
	require.NoError(t, clone.Set("shared", 2))

	var orig, cloned int
	_, _ = c.Get("shared", &orig)
	_, _ = clone.Get("shared", &cloned)
	assert.Equal(t, 1, orig)
	assert.Equal(t, 2, cloned)
}

func TestContextCloneOfNil(t *testing.T) {
	var c *Context
	clone := c.Clone()
	require.NotNil(t, clone)
	assert.Empty(t, clone.Keys())
}
