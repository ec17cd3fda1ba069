package wishlist

import (
	"context"
	"testing"

	"github.com/hackerz/marketplace/internal/domain/cart"
	"github.com/hackerz/marketplace/internal/domain/product"
	"github.com/hackerz/marketplace/internal/pkg/logger"
	"github.com/hackerz/marketplace/internal/pkg/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*Service, *product.Product) {
	db := testdb.New(t, &product.Category{}, &product.Product{}, &cart.Cart{}, &cart.CartItem{}, &WishlistItem{})

	cat := product.Category{Name: "Books", Slug: "books"}
	require.NoError(t, db.Create(&cat).Error)
	p := product.Product{Name: "Go in Action", Slug: "go-in-action", CategoryID: cat.ID, Price: 3000, RegularPrice: 3000, Stock: 2, Available: true}
	require.NoError(t, db.Create(&p).Error)

	log := logger.Discard()
	return NewService(db, cart.NewService(db, log), log), &p
}

func TestToggleAddsThenRemoves(t *testing.T) {
	svc, p := setup(t)
	ctx := context.Background()

	res, err := svc.Toggle(ctx, 1, p.ID)
	require.NoError(t, err)
	assert.Equal(t, ActionAdded, res.Action)
	assert.Equal(t, int64(1), res.WishlistCount)

	list, err := svc.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Go in Action", list.Items[0].Product.Name)

	res, err = svc.Toggle(ctx, 1, p.ID)
	require.NoError(t, err)
	assert.Equal(t, ActionRemoved, res.Action)
	assert.Zero(t, res.WishlistCount)

	_, err = svc.Toggle(ctx, 1, 999)
	assert.ErrorIs(t, err, product.ErrProductNotFound)
}

func TestRemoveMissingProduct(t *testing.T) {
	svc, p := setup(t)

	_, err := svc.Remove(context.Background(), 1, p.ID)
	assert.ErrorIs(t, err, ErrNotInWishlist)
}

func TestMoveToCart(t *testing.T) {
	svc, p := setup(t)
	ctx := context.Background()

	_, err := svc.MoveToCart(ctx, 1, p.ID, "sess-1", 1)
	assert.ErrorIs(t, err, ErrNotInWishlist)

	_, err = svc.Toggle(ctx, 1, p.ID)
	require.NoError(t, err)

	summary, err := svc.MoveToCart(ctx, 1, p.ID, "sess-1", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Count)

	ok, err := svc.Contains(ctx, 1, p.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}
