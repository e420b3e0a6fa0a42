package utils_test

import (
	"testing"

	"github.com/jrsteele09/go-inventory-ui/internal/utils"
	"github.com/stretchr/testify/require"
)

func TestToStringSlice(t *testing.T) {
	require.Equal(t, []string{"ROLE_ADMIN"}, utils.ToStringSlice("ROLE_ADMIN"))
	require.Equal(t, []string{"a", "b"}, utils.ToStringSlice([]any{"a", 1, " ", "b"}))
	require.Equal(t, []string{"x"}, utils.ToStringSlice([]string{"", "x"}))
	require.Empty(t, utils.ToStringSlice(nil))
	require.Empty(t, utils.ToStringSlice("  "))
}

func TestPointers(t *testing.T) {
	var nilInt *int
	require.Equal(t, 0, utils.Value(nilInt))
	require.Equal(t, 7, utils.ValueOr(nilInt, 7))
	require.Equal(t, 3, utils.Value(utils.Ptr(3)))
	require.Equal(t, 3, utils.ValueOr(utils.Ptr(3), 7))
}
