package crawler

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/antchfx/htmlquery"
	"github.com/shopspring/decimal"
	"github.com/ymakhloufi/credit-simulator/internal/pkg/model"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

var _ SiteCrawler = &HTMLTableCrawler{}

var (
	whitespace = regexp.MustCompile(`\s+`)
	hundred    = decimal.NewFromInt(100)
)

// HTMLTableCrawler reads published rate tables. Each table is tagged with data-person-type and
// data-modality; its header row lists segment codes and every other row holds one product:
//
//	<table data-person-type="PF" data-modality="Pre-fixado">
//	  <tr><th>Produto</th><th>PF1</th><th>PF2</th></tr>
//	  <tr><td>Financiamento</td><td>10,00%</td><td>-</td></tr>
//	</table>
type HTMLTableCrawler struct {
	source string
	client *http.Client
	logger *zap.Logger
}

func NewHTMLTableCrawler(source string, logger *zap.Logger) *HTMLTableCrawler {
	return &HTMLTableCrawler{
		source: source,
		client: &http.Client{Timeout: 30 * time.Second},
		logger: logger,
	}
}

func (h HTMLTableCrawler) Crawl(ctx context.Context, quotes chan<- model.RateQuote) {
	crawlTime := time.Now()
	doc, err := h.load(ctx)
	if err != nil {
		h.logger.Error("failed reading rate source", zap.String("source", h.source), zap.Error(err))
		return
	}
	h.logger.Debug("parsed root nodes")

	parsed, err := ParseRateTables(doc, model.Source(h.source), crawlTime)
	if err != nil {
		h.logger.Error("failed to parse rate tables", zap.String("source", h.source), zap.Error(err))
		return
	}
	h.logger.Debug("parsed rate quotes", zap.Int("count", len(parsed)))

	for _, q := range parsed {
		select {
		case quotes <- q:
		case <-ctx.Done():
			h.logger.Warn("crawl cancelled", zap.String("source", h.source), zap.Error(ctx.Err()))
			return
		}
	}
}

func (h HTMLTableCrawler) load(ctx context.Context) (*html.Node, error) {
	if !strings.HasPrefix(h.source, "http://") && !strings.HasPrefix(h.source, "https://") {
		return htmlquery.LoadDoc(h.source)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.source, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", h.source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, h.source)
	}
	return htmlquery.Parse(resp.Body)
}

// ParseRateTables extracts one quote per product and segment from every tagged table of doc.
func ParseRateTables(doc *html.Node, source model.Source, crawlTime time.Time) ([]model.RateQuote, error) {
	tables, err := htmlquery.QueryAll(doc, "//table[@data-person-type and @data-modality]")
	if err != nil {
		return nil, fmt.Errorf("failed to xpath rate tables: %w", err)
	}
	if len(tables) == 0 {
		return nil, fmt.Errorf("no rate tables found")
	}

	var quotes []model.RateQuote
	for _, table := range tables {
		parsed, err := parseTable(table, source, crawlTime)
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, parsed...)
	}
	return quotes, nil
}

func parseTable(table *html.Node, source model.Source, crawlTime time.Time) ([]model.RateQuote, error) {
	personType := model.PersonType(strings.TrimSpace(htmlquery.SelectAttr(table, "data-person-type")))
	modality := model.Modality(strings.TrimSpace(htmlquery.SelectAttr(table, "data-modality")))
	if !personType.Valid() {
		return nil, fmt.Errorf("unknown person type %q", personType)
	}
	if !modality.Valid() {
		return nil, fmt.Errorf("unknown modality %q", modality)
	}

	rowNodes, err := htmlquery.QueryAll(table, ".//tr")
	if err != nil {
		return nil, fmt.Errorf("failed to xpath rows: %w", err)
	}
	rows, err := parseRows(rowNodes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%s/%s table has no product rows", personType, modality)
	}

	segmentCodes := rows[0].fields
	quotes := make([]model.RateQuote, 0, (len(rows)-1)*len(segmentCodes))
	for _, row := range rows[1:] {
		if len(row.fields) != len(segmentCodes) {
			return nil, fmt.Errorf("row %q has %d cells, header has %d", row.title, len(row.fields), len(segmentCodes))
		}
		for i, cell := range row.fields {
			rate, err := parseRate(cell)
			if err != nil {
				return nil, fmt.Errorf("failed to parse rate for %s/%s: %w", row.title, segmentCodes[i], err)
			}
			quotes = append(quotes, model.RateQuote{
				Source:        source,
				PersonType:    personType,
				Modality:      modality,
				ProductName:   row.title,
				SegmentCode:   segmentCodes[i],
				Rate:          rate,
				QuotedOn:      civil.DateOf(crawlTime),
				LastCrawledAt: crawlTime,
			})
		}
	}
	return quotes, nil
}

// parseRate reads "9,00%" or "0.5%" as a fraction. Dashes and empty cells mean the product is not offered.
func parseRate(cell string) (*float64, error) {
	sanitized := strings.TrimSpace(strings.ReplaceAll(cell, "%", ""))
	switch sanitized {
	case "", "-", "–", "—", "n/d", "N/D":
		return nil, nil
	}

	sanitized = strings.Replace(sanitized, ",", ".", 1)
	percent, err := decimal.NewFromString(sanitized)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rate from string '%s' (sanitized: '%s'): %w", cell, sanitized, err)
	}
	if percent.IsNegative() {
		return nil, fmt.Errorf("negative rate '%s'", cell)
	}

	rate, _ := percent.Div(hundred).Float64()
	return &rate, nil
}

func parseRows(rows []*html.Node) ([]rowStruct, error) {
	rowStructs := make([]rowStruct, 0, len(rows))
	for _, rowNode := range rows {
		cells, err := htmlquery.QueryAll(rowNode, "./th|./td")
		if err != nil {
			return nil, fmt.Errorf("failed to xpath cells: %w", err)
		}
		if len(cells) == 0 {
			continue
		}

		fieldTexts := make([]string, 0, len(cells)-1)
		for _, cell := range cells[1:] {
			fieldTexts = append(fieldTexts, cellText(cell))
		}

		rowStructs = append(rowStructs, rowStruct{
			title:  cellText(cells[0]),
			fields: fieldTexts,
		})
	}

	return rowStructs, nil
}

func cellText(node *html.Node) string {
	out := htmlquery.InnerText(node)
	out = strings.ReplaceAll(out, "\u00a0", " ")
	out = whitespace.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}

type rowStruct struct {
	title  string
	fields []string
}
