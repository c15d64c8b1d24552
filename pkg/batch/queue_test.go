package batch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var validPNG = []byte{
	0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A,
	0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x02, 0x00, 0x00, 0x00, 0x90, 0x77, 0x53,
	0xDE, 0x00, 0x00, 0x00, 0x0C, 0x49, 0x44, 0x41,
	0x54, 0x08, 0xD7, 0x63, 0xF8, 0xCF, 0xC0, 0x00,
	0x00, 0x03, 0x01, 0x01, 0x00, 0x18, 0xDD, 0x8D,
	0xB0, 0x00, 0x00, 0x00, 0x00, 0x49, 0x45, 0x4E,
	0x44, 0xAE, 0x42, 0x60, 0x82,
}

func TestQueueDecodesMixedBatch(t *testing.T) {
	ctx := context.Background()
	q := NewQueue(ctx, 4, 2)

	q.Add("good.png", validPNG)
	q.Add("bad.bin", []byte("not a media file"))
	q.Close()

	var results []Result
	for r := range q.Results() {
		results = append(results, r)
	}
	require.Len(t, results, 2)

	succeeded, failed := q.Counts()
	require.Equal(t, int64(1), succeeded)
	require.Equal(t, int64(1), failed)
}

func TestQueueRespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	q := NewQueue(ctx, 4, 2)
	cancel()

	q.Add("good.png", validPNG)
	q.Close()

	select {
	case <-q.done:
	case <-time.After(2 * time.Second):
		t.Fatal("queue did not drain after context cancellation")
	}
}
