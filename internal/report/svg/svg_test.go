package svg

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBarsSingleSeries(t *testing.T) {
	markup, err := Bars(0, 0, []string{"Chair", "Desk"}, []Series{
		{Label: "Sales Amount", Values: []float64{20, 340}},
	}, Opts{Title: "Sales amount per item"})
	require.NoError(t, err)

	out := string(markup)
	require.True(t, strings.HasPrefix(out, "<svg"))
	require.Contains(t, out, "<title>Sales amount per item</title>")
	require.Contains(t, out, ">Chair</text>")
	require.Contains(t, out, ">Desk</text>")
	require.Equal(t, 2, strings.Count(out, "<rect x=\"")-1) // one legend swatch
}

func TestBarsGroupedSeries(t *testing.T) {
	markup, err := Bars(720, 260, []string{"Chair"}, []Series{
		{Label: "Stock Qty", Values: []float64{10}},
		{Label: "Stock Balance", Values: []float64{4}},
	}, Opts{})
	require.NoError(t, err)

	out := string(markup)
	require.Contains(t, out, "Stock Qty")
	require.Contains(t, out, "Stock Balance")
}

func TestBarsEscapesLabels(t *testing.T) {
	markup, err := Bars(0, 0, []string{`<b>&x</b>`}, []Series{
		{Label: "Sales", Values: []float64{1}},
	}, Opts{})
	require.NoError(t, err)
	require.NotContains(t, string(markup), "<b>")
	require.Contains(t, string(markup), "&lt;b&gt;")
}

func TestBarsRejectsBadInput(t *testing.T) {
	_, err := Bars(0, 0, nil, []Series{{Label: "A", Values: nil}}, Opts{})
	require.Error(t, err)

	_, err = Bars(0, 0, []string{"x"}, nil, Opts{})
	require.Error(t, err)

	_, err = Bars(0, 0, []string{"x", "y"}, []Series{{Label: "A", Values: []float64{1}}}, Opts{})
	require.Error(t, err)
}
