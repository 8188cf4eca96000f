package pagination

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	require.Equal(t, Params{Page: 1, Limit: DefaultLimit}, Params{}.Normalize())
	require.Equal(t, Params{Page: 3, Limit: MaxLimit}, Params{Page: 3, Limit: 500}.Normalize())
	require.Equal(t, Params{Page: 1, Limit: 5}, Params{Page: -2, Limit: 5}.Normalize())
}

func TestOffset(t *testing.T) {
	require.Equal(t, 0, Params{Page: 1, Limit: 10}.Offset())
	require.Equal(t, 20, Params{Page: 3, Limit: 10}.Offset())
	require.Equal(t, 0, Params{}.Offset())
}

func TestTotalPages(t *testing.T) {
	require.Equal(t, 0, TotalPages(0, 10))
	require.Equal(t, 1, TotalPages(10, 10))
	require.Equal(t, 2, TotalPages(11, 10))
	require.Equal(t, 1, TotalPages(3, 0))
}

func TestResultMeta(t *testing.T) {
	res := NewResult[string](nil, Params{Page: 2, Limit: 10}, 25)
	require.NotNil(t, res.Items)
	meta := res.Meta()
	require.Equal(t, 2, meta.Page)
	require.Equal(t, 10, meta.Limit)
	require.Equal(t, int64(25), meta.Total)
	require.Equal(t, 3, meta.TotalPages)
}
