package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Lot resolution always runs inside an allocation transaction and must lock
// the item row so concurrent allocators against the same title serialize.
func TestLotQueryLocksItemRow(t *testing.T) {
	require.Contains(t, lotQuery, "FOR UPDATE OF i")
	require.Contains(t, lotQuery, "ORDER BY inv.invoice_date ASC")
	require.Contains(t, lotQuery, "LIMIT 1")
}
