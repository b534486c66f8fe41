package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDisplayName_TruncatesLongCategoryName(t *testing.T) {
	name := "Este es un nombre de categoría extremadamente largo que debería ser truncado"
	category := Category{Name: name}

	label := category.DisplayName()

	require.Equal(t, string([]rune(name)[:18])+"...", label)
	require.NotEqual(t, name, label)
	require.True(t, strings.HasSuffix(label, "..."))
}

func TestDisplayName_ShortNameUntouched(t *testing.T) {
	category := Category{Name: "Ensaladas"}
	require.Equal(t, "Ensaladas", category.DisplayName())
}

func TestTruncate_CountsRunesNotBytes(t *testing.T) {
	// Multi-byte characters near the cut must survive intact.
	require.Equal(t, "áéíóú...", Truncate("áéíóúáéíóú", 5))
	require.Equal(t, "áéíóú", Truncate("áéíóú", 5))
}

func TestTruncate_ZeroMax(t *testing.T) {
	require.Equal(t, "", Truncate("algo", 0))
}
