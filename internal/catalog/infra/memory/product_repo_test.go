package memory

import (
	"context"
	"testing"

	"github.com/dwikikusuma/storefront-cart/internal/catalog/app"
	"github.com/dwikikusuma/storefront-cart/internal/catalog/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepo(Tampah()...)

	t.Run("get by id", func(t *testing.T) {
		p, err := repo.Get(ctx, "klepon")
		require.NoError(t, err)
		assert.Equal(t, "Klepon Gula Aren", p.Name)
		assert.Equal(t, domain.Money{Currency: "IDR", Amount: 28000}, p.Price)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := repo.Get(ctx, "lapis")
		assert.ErrorIs(t, err, app.ErrNotFound)
	})

	t.Run("query matches name or category", func(t *testing.T) {
		out, _, err := repo.List(ctx, "KUE", 20, "")
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, "kue-kering", out[0].ID)

		out, _, err = repo.List(ctx, "tradisional", 20, "")
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, "klepon", out[0].ID)
	})

	t.Run("pages with cursor", func(t *testing.T) {
		first, next, err := repo.List(ctx, "", 4, "")
		require.NoError(t, err)
		require.Len(t, first, 4)
		assert.Equal(t, "tumpeng-mini", next)

		rest, next, err := repo.List(ctx, "", 4, next)
		require.NoError(t, err)
		assert.Len(t, rest, 2)
		assert.Empty(t, next)
	})

	t.Run("bad cursor", func(t *testing.T) {
		_, _, err := repo.List(ctx, "", 4, "nope")
		assert.ErrorIs(t, err, app.ErrInvalidInput)
	})

	t.Run("create assigns id and rejects duplicate handle", func(t *testing.T) {
		p, err := repo.Create(ctx, domain.Product{Name: "Lapis Legit", Handle: "lapis-legit"})
		require.NoError(t, err)
		assert.NotEmpty(t, p.ID)
		assert.False(t, p.CreatedAt.IsZero())

		ok, err := repo.HandleExists(ctx, "lapis-legit")
		require.NoError(t, err)
		assert.True(t, ok)

		_, err = repo.Create(ctx, domain.Product{Name: "Again", Handle: "lapis-legit"})
		assert.ErrorIs(t, err, app.ErrInvalidInput)
	})

	t.Run("returned products are copies", func(t *testing.T) {
		_, err := repo.Create(ctx, domain.Product{Name: "Kaos", Handle: "kaos", Sizes: []string{"M"}})
		require.NoError(t, err)
		p, err := repo.Get(ctx, "kaos")
		require.NoError(t, err)
		p.Sizes[0] = "XL"

		again, err := repo.Get(ctx, "kaos")
		require.NoError(t, err)
		assert.Equal(t, []string{"M"}, again.Sizes)
	})
}
