package notifier

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/yorkjong/vistock-sub000/internal/model"
)

// FormatRankingReport renders the top of a ranking table as a Telegram
// message. topN caps the rows; 0 means 10.
func FormatRankingReport(table *model.RankingTable, formula string, topN int) string {
	if topN <= 0 {
		topN = 10
	}
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>RS Ranking (%s)</b> | %s\n\n",
		strings.ToUpper(formula), time.Now().Format("2006-01-02")))

	n := len(table.Stocks)
	if n > topN {
		n = topN
	}
	b.WriteString(fmt.Sprintf("<b>Top %d of %d stocks</b>\n", n, len(table.Stocks)))
	for _, row := range table.Stocks[:n] {
		b.WriteString(fmt.Sprintf("%2d. %-6s RS %s  rating %s  $%s\n",
			row.Rank, row.Symbol,
			num(row.RS), rating(row.Ratings), num(row.Price)))
	}

	if len(table.Industries) > 0 {
		m := len(table.Industries)
		if m > topN {
			m = topN
		}
		b.WriteString(fmt.Sprintf("\n<b>Top %d of %d industries</b>\n", m, len(table.Industries)))
		for _, row := range table.Industries[:m] {
			b.WriteString(fmt.Sprintf("%2d. %s RS %s (%s)\n",
				row.Rank, row.Industry, num(row.RS), row.Symbols))
		}
	}
	return b.String()
}

// FormatFinancialReport renders the top of a fundamentals table.
func FormatFinancialReport(table *model.FinancialTable, topN int) string {
	if topN <= 0 {
		topN = 10
	}
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📈 <b>Financial RS Ranking</b> | %s\n\n",
		time.Now().Format("2006-01-02")))

	n := len(table.Rows)
	if n > topN {
		n = topN
	}
	b.WriteString(fmt.Sprintf("<b>Top %d of %d stocks</b>\n", n, len(table.Rows)))
	for _, row := range table.Rows[:n] {
		b.WriteString(fmt.Sprintf("%2d. %-6s EPS RS %s  Rev RS %s  QoQ %s%%\n",
			row.Rank, row.Symbol, num(row.EPSRS), num(row.RevRS), num(row.EPSQoQ)))
	}
	return b.String()
}

// FormatRunError renders a failed run notice.
func FormatRunError(formula string, err error) string {
	return fmt.Sprintf("❌ <b>Ranking run failed (%s)</b>\n\n%v", strings.ToUpper(formula), err)
}

// num formats a value for display; NaN shows as a dash.
func num(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return humanize.CommafWithDigits(v, 2)
}

// rating shows the current-column rating from a ratings slice.
func rating(ratings []float64) string {
	if len(ratings) == 0 {
		return "-"
	}
	return num(ratings[0])
}
