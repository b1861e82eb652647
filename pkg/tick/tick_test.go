package tick

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextRoundTrip(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)
	assert.Nil(t, LogFields(context.Background()))

	start := time.Unix(100, 0)
	info := Info{Seq: 3, Now: start, Delta: time.Second}
	ctx := NewContext(context.Background(), info)

	got, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, info, got)
	assert.Equal(t, start, Now(ctx))
	assert.Len(t, LogFields(ctx), 2)
}

func TestInfo_Next(t *testing.T) {
	start := Info{Seq: 1, Now: time.Unix(0, 0)}
	next := start.Next(20*time.Millisecond, true)

	assert.Equal(t, uint64(2), next.Seq)
	assert.Equal(t, time.Unix(0, int64(20*time.Millisecond)), next.Now)
	assert.True(t, next.Fixed)
}
