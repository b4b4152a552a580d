package counter

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounter_RecordAndStats(t *testing.T) {
	client := newIsolatedRedisClient(t)
	c := New(client, "razorpay", "shiprocket")
	ctx := context.Background()

	c.Record(ctx, "razorpay", "applied")
	c.Record(ctx, "razorpay", "applied")
	c.Record(ctx, "razorpay", "auth_failed")
	c.Record(ctx, "shiprocket", "not_found")

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats["razorpay"]["applied"])
	assert.Equal(t, int64(1), stats["razorpay"]["auth_failed"])
	assert.Equal(t, int64(1), stats["shiprocket"]["not_found"])

	require.NoError(t, c.Reset(ctx))
	stats, err = c.Stats(ctx)
	require.NoError(t, err)
	assert.Empty(t, stats["razorpay"])
	assert.Contains(t, stats, "shiprocket")
}

func TestCounter_RecordNeverFails(t *testing.T) {
	var nilCounter *Counter
	nilCounter.Record(context.Background(), "razorpay", "applied")

	unreachable := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	t.Cleanup(func() { _ = unreachable.Close() })
	New(unreachable, "razorpay").Record(context.Background(), "razorpay", "applied")
}
