package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	q := setupQueue(t, 1024, nil)
	pushN(t, q, 2)

	buf := make([]byte, 32)
	n, err := q.Get(buf)
	require.NoError(t, err)
	assert.Equal(t, "msg-0", string(buf[:n]))

	// Get never pops
	n, err = q.Get(buf)
	require.NoError(t, err)
	assert.Equal(t, "msg-0", string(buf[:n]))
	assert.Equal(t, uint64(2), q.MessagesAvailable())
}

func TestGet_Empty(t *testing.T) {
	q := setupQueue(t, 1024, nil)

	_, err := q.Get(make([]byte, 8))
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = q.Peek()
	assert.ErrorIs(t, err, ErrEmpty)

	assert.ErrorIs(t, q.Pop(), ErrEmpty)
	assert.True(t, q.IsOpen())
}

func TestGet_BufferTooSmall(t *testing.T) {
	q := setupQueue(t, 1024, nil)
	require.NoError(t, q.Push([]byte("a longer message")))

	n, err := q.Get(make([]byte, 4))
	require.ErrorIs(t, err, ErrBufferTooSmall)
	assert.ErrorIs(t, err, ErrCapacity)
	assert.Equal(t, 16, n, "required length is reported")

	assert.True(t, q.IsOpen())
	assert.Equal(t, uint64(1), q.MessagesAvailable())

	buf := make([]byte, n)
	n, err = q.Get(buf)
	require.NoError(t, err)
	assert.Equal(t, "a longer message", string(buf[:n]))
}

func TestPeek(t *testing.T) {
	q := setupQueue(t, 1024, nil)
	require.NoError(t, q.Push([]byte("first")))
	require.NoError(t, q.Push([]byte("second")))

	got, err := q.Peek()
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), got)

	require.NoError(t, q.Pop())
	got, err = q.Peek()
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), got)
}

func TestGetAll(t *testing.T) {
	q := setupQueue(t, 1024, nil)
	for _, m := range []string{"one", "two", "three"} {
		require.NoError(t, q.Push([]byte(m)))
	}

	buf := make([]byte, 64)
	total, read, err := q.GetAll(buf, 10)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), read)
	assert.Equal(t, 11, total)
	assert.Equal(t, "onetwothree", string(buf[:total]))

	assert.Equal(t, uint64(3), q.MessagesAvailable(), "GetAll never pops")
}

func TestGetAll_MaxMessages(t *testing.T) {
	q := setupQueue(t, 1024, nil)
	pushN(t, q, 5)

	buf := make([]byte, 64)
	total, read, err := q.GetAll(buf, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), read)
	assert.Equal(t, "msg-0msg-1", string(buf[:total]))

	total, read, err = q.GetAll(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), read)
	assert.Equal(t, 0, total)
}

func TestGetAll_StopsAtBufferLimit(t *testing.T) {
	q := setupQueue(t, 1024, nil)
	for _, m := range []string{"aaaa", "bbbb", "cccccccc", "d"} {
		require.NoError(t, q.Push([]byte(m)))
	}

	buf := make([]byte, 12)
	total, read, err := q.GetAll(buf, 10)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), read, "third payload does not fit and ends the read")
	assert.Equal(t, 8, total)
	assert.Equal(t, "aaaabbbb", string(buf[:total]))

	total, read, err = q.GetAll(make([]byte, 2), 10)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), read)
	assert.Equal(t, 0, total)
	assert.True(t, q.IsOpen())
}

func TestGetAll_Empty(t *testing.T) {
	q := setupQueue(t, 1024, nil)

	_, _, err := q.GetAll(make([]byte, 8), 4)
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestGet_Metrics(t *testing.T) {
	opts, _ := testOptions(t)
	c := newCollector(opts)
	q := setupQueue(t, 1024, opts)
	pushN(t, q, 3)

	_, err := q.Peek()
	require.NoError(t, err)
	_, _, err = q.GetAll(make([]byte, 64), 3)
	require.NoError(t, err)

	snap := c.GetSnapshot()
	assert.Equal(t, uint64(4), snap.GetTotal)
	assert.Equal(t, uint64(20), snap.GetBytes)
	assert.Equal(t, uint64(3), snap.PushTotal)
	assert.Equal(t, uint64(3), snap.PendingMessages)
}
