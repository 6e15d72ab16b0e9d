package pagination

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixed returns count/list funcs over an in-memory ordered slice.
func fixed(items []int) (func(context.Context) (int, error), func(context.Context, int, int) ([]int, error)) {
	count := func(context.Context) (int, error) { return len(items), nil }
	list := func(_ context.Context, limit, offset int) ([]int, error) {
		if offset >= len(items) {
			return nil, nil
		}
		end := offset + limit
		if end > len(items) {
			end = len(items)
		}
		return items[offset:end], nil
	}
	return count, list
}

func TestPaginateFirstAndLastPage(t *testing.T) {
	ctx := context.Background()
	count, list := fixed([]int{1, 2, 3, 4, 5})

	p1, err := Paginate(ctx, 1, 2, count, list)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, p1.Items)
	assert.True(t, p1.HasNext())
	assert.False(t, p1.HasPrev())
	assert.Equal(t, 2, p1.NextPage())
	assert.Equal(t, 0, p1.PrevPage())

	p3, err := Paginate(ctx, 3, 2, count, list)
	require.NoError(t, err)
	assert.Equal(t, []int{5}, p3.Items)
	assert.False(t, p3.HasNext())
	assert.True(t, p3.HasPrev())
	assert.Equal(t, 0, p3.NextPage())
	assert.Equal(t, 2, p3.PrevPage())
	assert.Equal(t, 3, p3.Pages())
}

func TestPaginateOutOfRange(t *testing.T) {
	ctx := context.Background()
	count, list := fixed([]int{1, 2, 3})

	_, err := Paginate(ctx, 0, 2, count, list)
	assert.ErrorIs(t, err, ErrPageNotFound)

	_, err = Paginate(ctx, 3, 2, count, list)
	assert.ErrorIs(t, err, ErrPageNotFound)

	_, err = Paginate(ctx, -1, 2, count, list)
	assert.ErrorIs(t, err, ErrPageNotFound)
}

func TestPaginateRejectsHugePageNumbers(t *testing.T) {
	ctx := context.Background()
	listCalled := false
	count := func(context.Context) (int, error) { return 5, nil }
	list := func(_ context.Context, limit, offset int) ([]int, error) {
		listCalled = true
		require.GreaterOrEqual(t, offset, 0)
		return nil, nil
	}

	// Numbers large enough to overflow a naive offset multiplication must
	// still read as past-the-end, never as a negative window.
	for _, n := range []int{1<<59 + 1, int(^uint(0) >> 1), 4} {
		_, err := Paginate(ctx, n, 25, count, list)
		assert.ErrorIs(t, err, ErrPageNotFound, "page %d", n)
	}
	assert.False(t, listCalled)
}

func TestPaginateEmptyFirstPageIsValid(t *testing.T) {
	ctx := context.Background()
	count, list := fixed(nil)

	p, err := Paginate(ctx, 1, 10, count, list)
	require.NoError(t, err)
	assert.Empty(t, p.Items)
	assert.False(t, p.HasNext())
	assert.False(t, p.HasPrev())
	assert.Equal(t, 1, p.Pages())

	_, err = Paginate(ctx, 2, 10, count, list)
	assert.ErrorIs(t, err, ErrPageNotFound)
}

func TestPaginateConcatenationReproducesSource(t *testing.T) {
	ctx := context.Background()
	src := make([]int, 23)
	for i := range src {
		src[i] = i
	}
	count, list := fixed(src)

	var joined []int
	for n := 1; ; n++ {
		p, err := Paginate(ctx, n, 7, count, list)
		if errors.Is(err, ErrPageNotFound) {
			break
		}
		require.NoError(t, err)
		joined = append(joined, p.Items...)
	}
	assert.Equal(t, src, joined)
}

func TestPaginatePropagatesSourceErrors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")

	_, err := Paginate(ctx, 1, 5,
		func(context.Context) (int, error) { return 0, boom },
		func(context.Context, int, int) ([]int, error) { return nil, nil })
	assert.ErrorIs(t, err, boom)

	_, err = Paginate(ctx, 1, 5,
		func(context.Context) (int, error) { return 10, nil },
		func(context.Context, int, int) ([]int, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
}
