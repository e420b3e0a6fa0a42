package colours_test

import (
	"testing"

	"github.com/jrsteele09/go-inventory-ui/internal/colours"
	"github.com/stretchr/testify/require"
)

func TestMethod(t *testing.T) {
	require.Equal(t, colours.Green+" GET    "+colours.ResetColor, colours.Method("GET"))
	require.Equal(t, colours.Gray+" HEAD   "+colours.ResetColor, colours.Method("HEAD"))
}

func TestWrap(t *testing.T) {
	require.Equal(t, "plain", colours.Wrap(colours.Red, "plain", false))
	require.Equal(t, colours.Red+"x"+colours.ResetColor, colours.Wrap(colours.Red, "x", true))
}
