package batch

import (
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartitionBalanced(t *testing.T) {
	files := make([]string, 10)
	for i := range files {
		files[i] = fmt.Sprintf("run%02d.sqlite", i)
	}

	parts := Partition(files, 4)
	require.Len(t, parts, 4)
	assert.Len(t, parts[0], 3)
	assert.Len(t, parts[1], 3)
	assert.Len(t, parts[2], 2)
	assert.Len(t, parts[3], 2)

	var flat []string
	for _, p := range parts {
		flat = append(flat, p...)
	}
	assert.Equal(t, files, flat)
}

func TestPartitionProperties(t *testing.T) {
	for _, n := range []int{1, 2, 3, 7, 16} {
		for _, w := range []int{1, 2, 3, 5, 20} {
			files := make([]string, n)
			for i := range files {
				files[i] = strconv.Itoa(i)
			}

			parts := Partition(files, w)
			require.Len(t, parts, w, "n=%d w=%d", n, w)

			var flat []string
			minLen, maxLen := n, 0
			for _, p := range parts {
				flat = append(flat, p...)
				if len(p) < minLen {
					minLen = len(p)
				}
				if len(p) > maxLen {
					maxLen = len(p)
				}
			}
			assert.Equal(t, files, flat, "n=%d w=%d", n, w)
			assert.LessOrEqual(t, maxLen-minLen, 1, "n=%d w=%d", n, w)
		}
	}
}

func TestPartitionMoreWorkersThanFiles(t *testing.T) {
	parts := Partition([]string{"a", "b"}, 5)
	require.Len(t, parts, 5)
	assert.Equal(t, []string{"a"}, parts[0])
	assert.Equal(t, []string{"b"}, parts[1])
	for _, p := range parts[2:] {
		assert.Empty(t, p)
	}
}

func TestPartitionClampsWorkers(t *testing.T) {
	parts := Partition([]string{"a", "b", "c"}, 0)
	require.Len(t, parts, 1)
	assert.Equal(t, []string{"a", "b", "c"}, parts[0])
}

func TestPartitionEmpty(t *testing.T) {
	parts := Partition(nil, 3)
	require.Len(t, parts, 3)
	for _, p := range parts {
		assert.Empty(t, p)
	}
}
