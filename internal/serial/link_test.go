package serial

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drainUntil(t *testing.T, l *Link, n int) []string {
	t.Helper()
	var got []string
	require.Eventually(t, func() bool {
		got = append(got, l.Drain()...)
		return len(got) >= n
	}, time.Second, 5*time.Millisecond)
	return got
}

func TestLinkDrainReturnsCompleteLines(t *testing.T) {
	port := NewFakePort()
	l := NewLink(port)
	l.Start()
	defer l.Close()

	port.Inject([]byte("S,1\nT,4"))
	port.Inject([]byte("40\nR,"))

	got := drainUntil(t, l, 2)
	assert.Equal(t, []string{"S,1", "T,440"}, got)

	port.Inject([]byte("7\n"))
	got = drainUntil(t, l, 1)
	assert.Equal(t, []string{"R,7"}, got)
}

func TestLinkDrainDoesNotBlock(t *testing.T) {
	port := NewFakePort()
	l := NewLink(port)
	l.Start()
	defer l.Close()

	done := make(chan []string)
	go func() { done <- l.Drain() }()

	select {
	case got := <-done:
		assert.Empty(t, got)
	case <-time.After(time.Second):
		t.Fatal("Drain blocked with no data")
	}
}

func TestLinkSendWritesWholeLines(t *testing.T) {
	port := NewFakePort()
	l := NewLink(port)
	l.Start()

	require.True(t, l.Send([]byte("B,1\n")))
	require.True(t, l.Send([]byte("A,1.00,2.00\n")))

	require.Eventually(t, func() bool { return port.Writes() == 2 }, time.Second, 5*time.Millisecond)
	require.NoError(t, l.Close())

	assert.Equal(t, "B,1\nA,1.00,2.00\n", port.Written())
	assert.True(t, port.Closed())
}

func TestLinkSendAfterClose(t *testing.T) {
	port := NewFakePort()
	l := NewLink(port)
	l.Start()
	require.NoError(t, l.Close())

	assert.False(t, l.Send([]byte("B,1\n")))
}

func TestLinkSendDropsWhenQueueFull(t *testing.T) {
	port := NewFakePort()
	l := NewLink(port) // not started: nothing consumes the queue

	for i := 0; i < txQueueLines; i++ {
		require.True(t, l.Send([]byte("M,1\n")))
	}
	assert.False(t, l.Send([]byte("M,1\n")))
	assert.Equal(t, int64(1), l.Stats().TxDroppedLines)
}

func TestLinkCloseIsIdempotent(t *testing.T) {
	port := NewFakePort()
	l := NewLink(port)
	l.Start()

	require.NoError(t, l.Close())
	require.NoError(t, l.Close())
}
