package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ledgerline/ledgerline/internal/shared"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestDateRangeValidate(t *testing.T) {
	require.ErrorIs(t, DateRange{}.Validate(), shared.ErrValidation)
	require.ErrorIs(t, DateRange{Start: date(2024, 2, 1), End: date(2024, 1, 1)}.Validate(), shared.ErrValidation)
	require.NoError(t, DateRange{Start: date(2024, 1, 1)}.Validate())
	require.NoError(t, DateRange{End: date(2024, 1, 1)}.Validate())
	require.NoError(t, DateRange{Start: date(2024, 1, 1), End: date(2024, 2, 1)}.Validate())
}

func TestDateRangePredicate(t *testing.T) {
	start, end := date(2024, 1, 1), date(2024, 2, 1)

	cond, args := DateRange{Start: start, End: end}.Predicate("e.invoice_date")
	require.Equal(t, "e.invoice_date BETWEEN $1 AND $2", cond)
	require.Equal(t, []any{start, end}, args)

	cond, args = DateRange{Start: start}.Predicate("e.invoice_date")
	require.Equal(t, "e.invoice_date > $1", cond)
	require.Equal(t, []any{start}, args)

	cond, args = DateRange{End: end}.Predicate("e.invoice_date")
	require.Equal(t, "e.invoice_date < $1", cond)
	require.Equal(t, []any{end}, args)
}

func TestDateRangeFilename(t *testing.T) {
	rng := DateRange{Start: date(2024, 1, 1), End: date(2024, 2, 1)}
	require.Equal(t, "report_from_2024-01-01_to_2024-02-01.pdf", rng.Filename())
	require.Equal(t, "report_from_all_to_2024-02-01.pdf", DateRange{End: date(2024, 2, 1)}.Filename())
}
