package common_test

import (
	"math"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ecom-api/internal/common"
)

func TestParsePagination(t *testing.T) {
	cases := []struct {
		query   string
		page    int
		perPage int
	}{
		{"", 1, 20},
		{"page=3&limit=5", 3, 5},
		{"page=-1&limit=0", 1, 20},
		{"page=abc&limit=1000", 1, common.MaxPerPage},
		{"page=" + strconv.Itoa(math.MaxInt), common.MaxPage, 20},
	}
	for _, tc := range cases {
		t.Run(tc.query, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/orders?"+tc.query, nil)
			page, perPage := common.ParsePagination(req, 20)
			require.Equal(t, tc.page, page)
			require.Equal(t, tc.perPage, perPage)
		})
	}
}

func TestWindowStaysInInt32Range(t *testing.T) {
	limit, offset := common.Window(math.MaxInt, math.MaxInt)
	require.Equal(t, int32(common.MaxPerPage), limit)
	require.Equal(t, int32((common.MaxPage-1)*common.MaxPerPage), offset)
	require.GreaterOrEqual(t, offset, int32(0))

	limit, offset = common.Window(0, 0)
	require.Equal(t, int32(1), limit)
	require.Equal(t, int32(0), offset)

	limit, offset = common.Window(2, 10)
	require.Equal(t, int32(10), limit)
	require.Equal(t, int32(10), offset)
}
