package store

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIDListRoundTrip(t *testing.T) {
	sets := [][]int{{}, {0}, {7}, {3, 1, 2}, {10, 200, 3000, 0, 42}}
	for _, ids := range sets {
		require.Equal(t, ids, ParseIDList(FormatIDList(ids)))
	}
}

func TestIDListKeepsOrder(t *testing.T) {
	require.Equal(t, "3,1,2", FormatIDList([]int{3, 1, 2}))
	require.Equal(t, []int{3, 1, 2}, ParseIDList("3,1,2"))
}

func TestIDListEmpty(t *testing.T) {
	require.Equal(t, "", FormatIDList([]int{}))
	require.Equal(t, "", FormatIDList(nil))
	require.Equal(t, []int{}, ParseIDList(""))
	require.Equal(t, []int{}, ParseIDList("   "))
}

func TestParseIDListDropsJunk(t *testing.T) {
	require.Equal(t, []int{4, 5}, ParseIDList(" 4 , x, ,5"))
}

func TestDays(t *testing.T) {
	days := []string{"Mon", "Wed", "Fri"}
	require.Equal(t, "Mon,Wed,Fri", FormatDays(days))
	require.Equal(t, days, ParseDays("Mon, Wed ,Fri"))
	require.Equal(t, []string{}, ParseDays(""))
}
