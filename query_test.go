package archlens_test

import (
	"testing"

	"github.com/archlens/archlens"
	"github.com/stretchr/testify/assert"
)

func TestQueryKey_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "categories", archlens.CategoriesKey().String())
	assert.Equal(t, "packages/Fonts", archlens.PackagesKey("Fonts").String())
	assert.Equal(t, "search/bluetooth", archlens.SearchKey("bluetooth").String())
}

func TestQueryKey_Hash(t *testing.T) {
	t.Parallel()

	t.Run("equal keys hash equally", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, archlens.PackagesKey("Fonts").Hash(), archlens.PackagesKey("Fonts").Hash())
	})

	t.Run("distinct keys hash distinctly", func(t *testing.T) {
		t.Parallel()

		assert.NotEqual(t, archlens.PackagesKey("Fonts").Hash(), archlens.PackagesKey("Fonts Variants").Hash())
		assert.NotEqual(t, archlens.PackagesKey("Fonts").Hash(), archlens.SearchKey("Fonts").Hash())
	})

	t.Run("op and param do not concatenate ambiguously", func(t *testing.T) {
		t.Parallel()

		a := archlens.QueryKey{Op: "packages", Param: "xFonts"}
		b := archlens.QueryKey{Op: "packagesx", Param: "Fonts"}
		assert.NotEqual(t, a.Hash(), b.Hash())
	})
}

func TestQueryKey_Zero(t *testing.T) {
	t.Parallel()

	assert.True(t, archlens.QueryKey{}.Zero())
	assert.False(t, archlens.CategoriesKey().Zero())
}
