package product

import (
	"context"
	"testing"

	"github.com/hackerz/marketplace/internal/pkg/apperror"
	"github.com/hackerz/marketplace/internal/pkg/logger"
	"github.com/hackerz/marketplace/internal/pkg/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *ReviewService) {
	db := testdb.New(t, &Category{}, &Product{}, &Review{})
	return NewService(db, logger.Discard()), NewReviewService(db)
}

func TestCreateDerivesUniqueSlug(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cat, err := svc.CreateCategory(ctx, "Hardware", "")
	require.NoError(t, err)

	first, err := svc.Create(ctx, &CreateRequest{Name: "Rubber Ducky", CategoryID: cat.ID, Price: 4999, Description: "USB keystroke injector", Stock: 3})
	require.NoError(t, err)
	second, err := svc.Create(ctx, &CreateRequest{Name: "Rubber Ducky", CategoryID: cat.ID, Price: 5999, Description: "v2", Stock: 1})
	require.NoError(t, err)

	assert.Equal(t, "rubber-ducky", first.Slug)
	assert.Equal(t, "rubber-ducky-2", second.Slug)
	assert.Equal(t, int64(4999), first.RegularPrice, "regular price defaults to price")
	assert.True(t, first.Available)
	assert.Equal(t, "Hardware", first.Category.Name)
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cat, err := svc.CreateCategory(ctx, "Books", "")
	require.NoError(t, err)

	_, err = svc.Create(ctx, &CreateRequest{Name: "Untitled", CategoryID: cat.ID, Price: 100})
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	assert.Equal(t, "description", apperror.FieldOf(err))

	_, err = svc.Create(ctx, &CreateRequest{Name: "Ghost", CategoryID: 999, Price: 100, Description: "x"})
	require.Error(t, err)
	assert.Equal(t, "category", apperror.FieldOf(err))
}

func TestListFiltersAndSorts(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	hw, _ := svc.CreateCategory(ctx, "Hardware", "")
	bk, _ := svc.CreateCategory(ctx, "Books", "")
	off := false

	_, err := svc.Create(ctx, &CreateRequest{Name: "Flipper", CategoryID: hw.ID, Price: 16900, Description: "multi tool"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, &CreateRequest{Name: "Proxmark", CategoryID: hw.ID, Price: 30000, Description: "rfid"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, &CreateRequest{Name: "Hacking Handbook", CategoryID: bk.ID, Price: 3500, Description: "web"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, &CreateRequest{Name: "Hidden", CategoryID: hw.ID, Price: 100, Description: "x", Available: &off})
	require.NoError(t, err)

	res, err := svc.List(ctx, &ListRequest{CategorySlug: "hardware", Sort: "price_desc"})
	require.NoError(t, err)
	require.Len(t, res.Products, 2)
	assert.Equal(t, "Proxmark", res.Products[0].Name)
	assert.Equal(t, int64(2), res.Pagination.Total)

	res, err = svc.List(ctx, &ListRequest{Search: "books"})
	require.NoError(t, err)
	require.Len(t, res.Products, 1)
	assert.Equal(t, "Hacking Handbook", res.Products[0].Name)

	_, err = svc.List(ctx, &ListRequest{CategorySlug: "nope"})
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestUpdateAndDelete(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cat, _ := svc.CreateCategory(ctx, "Hardware", "")
	p, err := svc.Create(ctx, &CreateRequest{Name: "Pineapple", CategoryID: cat.ID, Price: 9900, Description: "wifi"})
	require.NoError(t, err)

	stock := 7
	price := int64(8900)
	updated, err := svc.Update(ctx, p.ID, &UpdateRequest{Stock: &stock, Price: &price})
	require.NoError(t, err)
	assert.Equal(t, 7, updated.Stock)
	assert.Equal(t, int64(8900), updated.Price)
	assert.True(t, updated.OnSale())

	require.NoError(t, svc.Delete(ctx, p.ID))
	assert.ErrorIs(t, svc.Delete(ctx, p.ID), ErrProductNotFound)

	_, err = svc.Get(ctx, p.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestReviewUpsert(t *testing.T) {
	svc, reviews := newTestService(t)
	ctx := context.Background()

	cat, _ := svc.CreateCategory(ctx, "Books", "")
	p, err := svc.Create(ctx, &CreateRequest{Name: "Shellcoder", CategoryID: cat.ID, Price: 4000, Description: "x"})
	require.NoError(t, err)

	res, err := reviews.Upsert(ctx, 1, p.ID, &ReviewRequest{Rating: 4, Title: "Good", Comment: "Solid"})
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, int64(1), res.Count)

	res, err = reviews.Upsert(ctx, 1, p.ID, &ReviewRequest{Rating: 5, Title: "Great", Comment: "Re-read it"})
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.Equal(t, int64(1), res.Count, "one review per user and product")
	assert.Equal(t, 5.0, res.AverageRating)

	res, err = reviews.Upsert(ctx, 2, p.ID, &ReviewRequest{Rating: 2, Title: "Meh", Comment: "Dated"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Count)
	assert.Equal(t, 3.5, res.AverageRating)
}

func TestReviewValidation(t *testing.T) {
	svc, reviews := newTestService(t)
	ctx := context.Background()

	cat, _ := svc.CreateCategory(ctx, "Books", "")
	p, _ := svc.Create(ctx, &CreateRequest{Name: "Book", CategoryID: cat.ID, Price: 100, Description: "x"})

	tests := []struct {
		name  string
		req   ReviewRequest
		field string
	}{
		{"rating too high", ReviewRequest{Rating: 6, Title: "t", Comment: "c"}, "rating"},
		{"rating missing", ReviewRequest{Title: "t", Comment: "c"}, "rating"},
		{"blank title", ReviewRequest{Rating: 3, Title: "  ", Comment: "c"}, "title"},
		{"blank comment", ReviewRequest{Rating: 3, Title: "t"}, "comment"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := reviews.Upsert(ctx, 1, p.ID, &tt.req)
			require.Error(t, err)
			assert.Equal(t, tt.field, apperror.FieldOf(err))
		})
	}

	_, err := reviews.Upsert(ctx, 1, 404, &ReviewRequest{Rating: 3, Title: "t", Comment: "c"})
	assert.ErrorIs(t, err, ErrProductNotFound)
}
