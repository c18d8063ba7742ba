package utils

import (
	"container/heap"
	"errors"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"testing"
)

type intItem int

func (i intItem) Less(o interface{}) bool {
	return i < o.(intItem)
}

func TestPriorityQueue(t *testing.T) {
	pq := make(PriorityQueue, 0)
	heap.Init(&pq)
	for _, v := range []int{5, 1, 4, 2, 3} {
		heap.Push(&pq, intItem(v))
	}

	var got []int
	for pq.Len() > 0 {
		got = append(got, int(heap.Pop(&pq).(intItem)))
	}
	require.Equal(t, []int{1, 2, 3, 4, 5}, got)
}

func TestHashStrings(t *testing.T) {
	require.Equal(t, HashStrings("a", "b"), HashStrings("a", "b"))
	require.NotEqual(t, HashStrings("ab", "c"), HashStrings("a", "bc"))
	require.NotEqual(t, HashString("greedy"), HashString("viterbi"))
}

func TestReadList(t *testing.T) {
	p := filepath.Join(t.TempDir(), "tags.txt")
	require.NoError(t, os.WriteFile(p, []byte("NN\n\n VB \nDT\n"), 0o644))

	list, err := ReadList(p)
	require.NoError(t, err)
	require.Equal(t, []string{"NN", "VB", "DT"}, list)

	_, err = ReadList(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}

func TestRecoverWithError(t *testing.T) {
	run := func() (err error) {
		defer RecoverWithError(&err)
		panic(errors.New("boom"))
	}
	err := run()
	require.EqualError(t, err, "got panic: boom")
}
