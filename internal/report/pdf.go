package report

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ledgerline/ledgerline/internal/report/svg"
)

// Renderer converts a report dataset to PDF through a Gotenberg instance.
type Renderer struct {
	Endpoint string
	Client   *http.Client
}

// Render builds the report HTML and sends it to Gotenberg.
func (p *Renderer) Render(ctx context.Context, ds Dataset) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("pdf renderer not initialised")
	}
	endpoint := strings.TrimRight(p.Endpoint, "/")
	if endpoint == "" {
		return nil, fmt.Errorf("gotenberg endpoint required")
	}
	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}

	html, err := buildHTML(ds)
	if err != nil {
		return nil, err
	}
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("files", "index.html")
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(part, html); err != nil {
		return nil, err
	}
	if err := writer.WriteField("waitDelay", "500"); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"/forms/chromium/convert/html", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("gotenberg response %d: %s", resp.StatusCode, string(data))
	}

	return io.ReadAll(resp.Body)
}

func buildHTML(ds Dataset) (string, error) {
	printer := message.NewPrinter(language.English)

	labels := make([]string, 0, len(ds.Rows))
	sales := make([]float64, 0, len(ds.Rows))
	stockQty := make([]float64, 0, len(ds.Rows))
	stockBalance := make([]float64, 0, len(ds.Rows))
	for _, row := range ds.Rows {
		labels = append(labels, row.Title)
		amount, _ := row.SalesAmount.Float64()
		sales = append(sales, amount)
		stockQty = append(stockQty, float64(row.StockQty))
		stockBalance = append(stockBalance, float64(row.StockBalance))
	}

	var b strings.Builder
	b.WriteString("<html><head><meta charset=\"utf-8\"><style>")
	b.WriteString("body{font-family:sans-serif;margin:24px;}h1{font-size:20px;}h2{font-size:14px;}table{width:100%;border-collapse:collapse;margin-bottom:16px;}th,td{border:1px solid #ddd;padding:6px;text-align:right;}th{text-align:left;background:#f5f5f5;}section{margin-bottom:24px;} .item-label{text-align:left;}")
	b.WriteString("</style></head><body>")
	fmt.Fprintf(&b, "<h1>Sales and Stock Report – %s to %s</h1>", htmlEscape(ds.Range.bound(ds.Range.Start)), htmlEscape(ds.Range.bound(ds.Range.End)))

	b.WriteString("<section><h2>Summary</h2><table><tbody>")
	fmt.Fprintf(&b, "<tr><td class=\"item-label\">Items Sold</td><td>%s</td></tr>", printer.Sprintf("%d", ds.Summary.ItemCount))
	fmt.Fprintf(&b, "<tr><td class=\"item-label\">Units Sold</td><td>%s</td></tr>", printer.Sprintf("%d", ds.Summary.TotalQty))
	totalAmount, _ := ds.Summary.TotalAmount.Float64()
	fmt.Fprintf(&b, "<tr><td class=\"item-label\">Sales Amount</td><td>%s</td></tr>", printer.Sprintf("%.2f", totalAmount))
	b.WriteString("</tbody></table></section>")

	if len(ds.Rows) > 0 {
		b.WriteString("<section><h2>Sales By Item</h2><table><thead><tr><th>Item</th><th>Price</th><th>Units Sold</th><th>Sales Amount</th><th>Stock Qty</th><th>Stock Balance</th></tr></thead><tbody>")
		for _, row := range ds.Rows {
			price, _ := row.Price.Float64()
			amount, _ := row.SalesAmount.Float64()
			fmt.Fprintf(&b, "<tr><td class=\"item-label\">%s</td><td>%s</td><td>%s</td><td>%s</td><td>%d</td><td>%d</td></tr>",
				htmlEscape(row.Title),
				printer.Sprintf("%.2f", price),
				printer.Sprintf("%d", row.SalesQty),
				printer.Sprintf("%.2f", amount),
				row.StockQty, row.StockBalance)
		}
		b.WriteString("</tbody></table></section>")

		salesChart, err := svg.Bars(svg.DefaultWidth, svg.DefaultHeight, labels,
			[]svg.Series{{Label: "Sales Amount", Color: "#0ea5e9", Values: sales}},
			svg.Opts{Title: "Sales amount per item"})
		if err != nil {
			return "", fmt.Errorf("report: sales chart: %w", err)
		}
		stockChart, err := svg.Bars(svg.DefaultWidth, svg.DefaultHeight, labels,
			[]svg.Series{
				{Label: "Stock Qty", Color: "#0ea5e9", Values: stockQty},
				{Label: "Stock Balance", Color: "#f97316", Values: stockBalance},
			},
			svg.Opts{Title: "Stock position per item"})
		if err != nil {
			return "", fmt.Errorf("report: stock chart: %w", err)
		}
		fmt.Fprintf(&b, "<section><h2>Sales Amount</h2>%s</section>", salesChart)
		fmt.Fprintf(&b, "<section><h2>Stock Position</h2>%s</section>", stockChart)
	}

	b.WriteString("</body></html>")
	return b.String(), nil
}

func htmlEscape(v string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"\"", "&quot;",
	)
	return replacer.Replace(v)
}
