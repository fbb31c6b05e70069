package normalization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type color string

const (
	red  color = "red"
	blue color = "blue"
)

func TestNormalize(t *testing.T) {
	n := New("color", map[string]color{"Red": red, "blue": blue}, blue)

	assert.Equal(t, red, n.Normalize("  RED "))
	assert.Equal(t, blue, n.Normalize("green"))
	assert.Equal(t, []string{"blue", "red"}, n.Keys())

	v, err := n.NormalizeWithError("red")
	require.NoError(t, err)
	assert.Equal(t, red, v)

	_, err = n.NormalizeWithError("green")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid color "green"`)
}
