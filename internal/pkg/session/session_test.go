package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T, id string) (*Session, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return New(id, NewRedisStore(client), time.Hour), mr
}

type marker struct {
	OrderID uint  `json:"order_id"`
	Total   int64 `json:"total"`
}

func TestSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	sess, mr := newTestSession(t, "abc")

	require.NoError(t, sess.Save(ctx, "coupon", map[string]string{"code": "SAVE10"}))
	assert.True(t, mr.Exists("session:abc:coupon"))

	var got map[string]string
	found, err := sess.Load(ctx, "coupon", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "SAVE10", got["code"])
}

func TestLoadMissing(t *testing.T) {
	sess, _ := newTestSession(t, "abc")

	var got marker
	found, err := sess.Load(context.Background(), "nothing", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestTakeConsumesOnce(t *testing.T) {
	ctx := context.Background()
	sess, _ := newTestSession(t, "abc")

	require.NoError(t, sess.SaveFor(ctx, "order_complete", marker{OrderID: 9, Total: 1200}, time.Minute))

	var first marker
	found, err := sess.Take(ctx, "order_complete", &first)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, uint(9), first.OrderID)

	var second marker
	found, err = sess.Take(ctx, "order_complete", &second)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	a, mr := newTestSession(t, "a")
	b := New("b", a.store, time.Hour)

	require.NoError(t, a.Save(ctx, "coupon", "X"))

	var got string
	found, err := b.Load(ctx, "coupon", &got)
	require.NoError(t, err)
	assert.False(t, found)

	mr.FastForward(2 * time.Hour)
	found, err = a.Load(ctx, "coupon", &got)
	require.NoError(t, err)
	assert.False(t, found)
}
