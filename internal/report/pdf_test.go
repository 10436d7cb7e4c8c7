package report

import (
	"context"
	"io"
	"mime"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Range: DateRange{Start: date(2024, 1, 1), End: date(2024, 2, 1)},
		Rows: []Row{
			{ItemID: 1, Title: "Office Chair", Price: decimal.RequireFromString("120.00"), SalesQty: 7, SalesAmount: decimal.RequireFromString("840.00"), StockQty: 10, StockBalance: 3},
			{ItemID: 2, Title: "Standing Desk", Price: decimal.RequireFromString("340.00"), SalesQty: 1, SalesAmount: decimal.RequireFromString("340.00"), StockQty: 4, StockBalance: 3},
		},
		Summary: Summary{ItemCount: 2, TotalQty: 8, TotalAmount: decimal.RequireFromString("1180.00")},
	}
}

func TestBuildHTML(t *testing.T) {
	html, err := buildHTML(sampleDataset())
	require.NoError(t, err)

	require.Contains(t, html, "Sales and Stock Report – 2024-01-01 to 2024-02-01")
	require.Contains(t, html, "Office Chair")
	require.Contains(t, html, "840.00")
	require.Contains(t, html, "1,180.00")
	require.Equal(t, 2, strings.Count(html, "<svg"))
}

func TestBuildHTMLEscapesTitles(t *testing.T) {
	ds := sampleDataset()
	ds.Rows[0].Title = `<script>alert("x")</script>`
	html, err := buildHTML(ds)
	require.NoError(t, err)
	require.NotContains(t, html, "<script>")
}

func TestBuildHTMLEmptyRows(t *testing.T) {
	ds := sampleDataset()
	ds.Rows = nil
	html, err := buildHTML(ds)
	require.NoError(t, err)
	require.NotContains(t, html, "<svg")
}

func TestRendererSendsMultipartToGotenberg(t *testing.T) {
	var gotPath, gotContentType string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte("%PDF-1.4 fake"))
	}))
	defer server.Close()

	renderer := &Renderer{Endpoint: server.URL, Client: server.Client()}
	pdf, err := renderer.Render(context.Background(), sampleDataset())
	require.NoError(t, err)
	require.Equal(t, []byte("%PDF-1.4 fake"), pdf)

	require.Equal(t, "/forms/chromium/convert/html", gotPath)
	mediaType, _, err := mime.ParseMediaType(gotContentType)
	require.NoError(t, err)
	require.Equal(t, "multipart/form-data", mediaType)
	require.Contains(t, string(gotBody), "index.html")
}

func TestRendererSurfacesGotenbergErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "chromium crashed", http.StatusInternalServerError)
	}))
	defer server.Close()

	renderer := &Renderer{Endpoint: server.URL, Client: server.Client()}
	_, err := renderer.Render(context.Background(), sampleDataset())
	require.ErrorContains(t, err, "gotenberg response 500")
}

func TestRendererRequiresEndpoint(t *testing.T) {
	renderer := &Renderer{}
	_, err := renderer.Render(context.Background(), sampleDataset())
	require.ErrorContains(t, err, "endpoint required")
}
