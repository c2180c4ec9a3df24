package fields

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/wakaflorien/procureToPay/internal/entity"
)

// reColumnGap splits a layout-preserving text line into table cells. Two or
// more spaces mark a column boundary; single spaces stay inside a cell.
var reColumnGap = regexp.MustCompile(` {2,}`)

var (
	qtyHeaderWords   = []string{"qty", "quantity", "qty.", "qty:"}
	nameHeaderWords  = []string{"item", "description", "product", "name"}
	priceHeaderWords = []string{"price", "amount", "total", "cost", "unit"}
)

func headerHasAny(cell string, words []string) bool {
	for _, w := range words {
		if strings.Contains(cell, w) {
			return true
		}
	}
	return false
}

// splitColumns returns the cells of a line, or nil when the line has fewer
// than two columns.
func splitColumns(line string) []string {
	cells := reColumnGap.Split(strings.TrimSpace(line), -1)
	if len(cells) < 2 {
		return nil
	}
	return cells
}

// extractItemsFromTable is the fallback when no item rows matched the
// positional patterns. It works on layout-preserving text: consecutive
// multi-column lines form a table, the first row is assumed to be the
// header, and quantity/name/price columns are inferred from header words
// with positional defaults (first, second, last).
func extractItemsFromTable(lines []string) []entity.LineItem {
	var items []entity.LineItem

	var table [][]string
	flush := func() {
		if len(table) > 1 {
			items = append(items, parseTable(table)...)
		}
		table = nil
	}

	for _, line := range lines {
		if cells := splitColumns(line); cells != nil {
			table = append(table, cells)
			continue
		}
		flush()
	}
	flush()

	return items
}

func parseTable(table [][]string) []entity.LineItem {
	header := make([]string, len(table[0]))
	for i, cell := range table[0] {
		header[i] = strings.ToLower(strings.TrimSpace(cell))
	}

	qtyCol, nameCol, priceCol := -1, -1, -1
	for i, h := range header {
		switch {
		case headerHasAny(h, qtyHeaderWords):
			qtyCol = i
		case headerHasAny(h, nameHeaderWords):
			nameCol = i
		case headerHasAny(h, priceHeaderWords):
			priceCol = i
		}
	}
	if qtyCol == -1 {
		qtyCol = 0
	}
	if nameCol == -1 {
		nameCol = 0
		if len(header) > 1 {
			nameCol = 1
		}
	}

	var items []entity.LineItem
	for _, row := range table[1:] {
		if qtyCol >= len(row) || nameCol >= len(row) || len(row) == 0 {
			continue
		}
		priceCell := row[len(row)-1]
		if priceCol >= 0 && priceCol < len(row) {
			priceCell = row[priceCol]
		}

		qty, err := parseTableInt(row[qtyCol])
		if err != nil {
			continue
		}
		name := strings.TrimSpace(row[nameCol])
		price, err := parseTablePrice(priceCell)
		if err != nil {
			continue
		}
		if qty > 0 && price >= 0 && len(name) > 1 {
			items = append(items, entity.LineItem{
				Quantity: qty,
				Name:     name,
				Price:    price,
			})
		}
	}
	return items
}

func parseTableInt(cell string) (int, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(cell, ",", "")), 64)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

var tablePriceReplacer = strings.NewReplacer(
	",", "", "$", "", "€", "", "£", "",
	"USD", "", "EUR", "", "GBP", "",
)

func parseTablePrice(cell string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(tablePriceReplacer.Replace(cell)), 64)
}
