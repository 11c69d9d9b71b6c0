package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStack_NewStack(t *testing.T) {
	stack := NewStack[int](10)
	require.NotNil(t, stack)
	assert.Equal(t, 10, stack.Cap())
	assert.True(t, stack.Empty())

	stack = NewStack[int](0)
	assert.Equal(t, DefaultCapacity, stack.Cap())
}

func TestStack_PushPop(t *testing.T) {
	stack := NewStack[string](5)

	for _, s := range []string{"a", "b", "c"} {
		_, evicted := stack.Push(s)
		assert.False(t, evicted)
	}
	assert.Equal(t, 3, stack.Len())

	top, ok := stack.Peek()
	require.True(t, ok)
	assert.Equal(t, "c", top)

	for _, want := range []string{"c", "b", "a"} {
		got, ok := stack.Pop()
		require.True(t, ok)
		assert.Equal(t, want, got)
	}

	_, ok = stack.Pop()
	assert.False(t, ok)
	_, ok = stack.Peek()
	assert.False(t, ok)
}

func TestStack_CapacityOverflow(t *testing.T) {
	capacity := 3
	stack := NewStack[int](capacity)

	var dropped []int
	for i := 0; i < 5; i++ {
		if old, evicted := stack.Push(i); evicted {
			dropped = append(dropped, old)
		}
	}

	assert.Equal(t, capacity, stack.Len())
	assert.Equal(t, []int{0, 1}, dropped)
	// Items are returned most recent first
	assert.Equal(t, []int{4, 3, 2}, stack.Items())
}

func TestStack_Clear(t *testing.T) {
	stack := NewStack[int](3)
	stack.Push(1)
	stack.Push(2)
	stack.Clear()

	assert.True(t, stack.Empty())
	assert.Equal(t, 3, stack.Cap())
}

func TestStack_Resize(t *testing.T) {
	stack := NewStack[int](5)
	for i := 1; i <= 5; i++ {
		stack.Push(i)
	}

	evicted := stack.Resize(2)
	assert.Equal(t, 3, evicted)
	assert.Equal(t, []int{5, 4}, stack.Items())

	evicted = stack.Resize(4)
	assert.Equal(t, 0, evicted)
	stack.Push(6)
	stack.Push(7)
	assert.Equal(t, []int{7, 6, 5, 4}, stack.Items())
}
