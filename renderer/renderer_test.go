package renderer

import (
	"strings"
	"testing"
	"time"

	"github.com/etnz/fintrack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// outline parses markdown and returns its headings and the row count of each table.
func outline(t *testing.T, md string) (headings []string, tables []int) {
	t.Helper()
	src := []byte(md)
	doc := goldmark.New(goldmark.WithExtensions(extension.Table)).Parser().Parse(text.NewReader(src))
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.Heading:
			headings = append(headings, string(n.Text(src)))
		case *east.Table:
			rows := 0
			for c := n.FirstChild(); c != nil; c = c.NextSibling() {
				if _, ok := c.(*east.TableRow); ok {
					rows++
				}
			}
			tables = append(tables, rows)
		}
		return ast.WalkContinue, nil
	})
	require.NoError(t, err)
	return headings, tables
}

func TestRenderDashboard(t *testing.T) {
	updated := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	holdings := []fintrack.Holding{
		{
			Symbol: "AAPL", Kind: fintrack.KindForeignEquity, Currency: fintrack.USD,
			Quantity: fintrack.D(10), CostBasis: fintrack.D(1000), AverageCost: fintrack.D(100),
			LastQuote: &fintrack.Quote{Price: fintrack.D(120), Currency: fintrack.USD, UpdatedAt: updated},
		},
		{
			Symbol: "BTC", Kind: fintrack.KindCrypto, Currency: fintrack.USD,
			Quantity: fintrack.MustD("0.01"), CostBasis: fintrack.D(500), AverageCost: fintrack.D(50000),
		},
	}
	rate := &fintrack.FXRate{Pair: fintrack.DefaultPair, Rate: fintrack.MustD("36.5")}
	md := RenderDashboard(fintrack.BuildReport(holdings, fintrack.USD, rate))

	require.NotContains(t, md, "error ")
	headings, tables := outline(t, md)
	assert.Equal(t, []string{"Portfolio in USD", "Holdings", "Allocation"}, headings)
	// body rows only, the header row is not counted
	assert.Equal(t, []int{4, 2, 2}, tables)

	assert.Contains(t, md, "**$1,200.00**")
	assert.Contains(t, md, "| Total Cost | $1,500.00 |")
	assert.Contains(t, md, "-$300.00")
	assert.Contains(t, md, "| USDTRY | 36.5 |")
	assert.Contains(t, md, "| AAPL | US Stocks | 10 | $100.00 | $120.00 | $1,200.00 | +$200.00 | +20.00% |")
	assert.Contains(t, md, "| BTC | Crypto | 0.01 | $50,000.00 | - | $0.00 | -$500.00 | -100.00% |")
	assert.Contains(t, md, "| Crypto |")
}

func TestRenderEmptyDashboard(t *testing.T) {
	md := RenderDashboard(fintrack.BuildReport(nil, fintrack.TRY, nil))
	headings, tables := outline(t, md)
	assert.Equal(t, []string{"Portfolio in TRY"}, headings)
	assert.Equal(t, []int{3}, tables)
	assert.Contains(t, md, "| Last Update | never |")
	assert.False(t, strings.Contains(md, "USDTRY"))
}
