package format

import (
	"sort"
	"strings"
)

type SortMode int

const (
	Asc SortMode = iota
	Desc
	AscCustom
)

// StrOrder is an explicit ordering for AscCustom sorts; values not present
// sort after every listed value.
type StrOrder []string

func (o StrOrder) rank(value string) int {
	for i, v := range o {
		if v == value {
			return i
		}
	}
	return len(o)
}

type SortBy struct {
	Name  string
	Mode  SortMode
	Order StrOrder
}

// Table accumulates rows and renders them as an aligned text table or a
// markdown table. Rows shorter than the header are padded with blanks.
type Table struct {
	header []string
	rows   [][]string
	sortBy []SortBy
}

func (t *Table) WithHeader(columns ...string) *Table {
	t.header = columns
	return t
}

func (t *Table) WithRow(values ...string) *Table {
	row := make([]string, len(t.header))
	copy(row, values)
	t.rows = append(t.rows, row)
	return t
}

func (t *Table) SortBy(fields []SortBy) *Table {
	t.sortBy = fields
	return t
}

func (t *Table) Sort() *Table {
	columnIndex := func(name string) int {
		for i, column := range t.header {
			if column == name {
				return i
			}
		}
		return -1
	}

	sort.SliceStable(t.rows, func(i, j int) bool {
		for _, field := range t.sortBy {
			col := columnIndex(field.Name)
			if col == -1 {
				continue
			}
			a, b := t.rows[i][col], t.rows[j][col]
			if a == b {
				continue
			}
			switch field.Mode {
			case Desc:
				return a > b
			case AscCustom:
				return field.Order.rank(a) < field.Order.rank(b)
			default:
				return a < b
			}
		}
		return false
	})
	return t
}

func (t *Table) widths() []int {
	widths := make([]int, len(t.header))
	for i, column := range t.header {
		widths[i] = len(column)
	}
	for _, row := range t.rows {
		for i, value := range row {
			if i < len(widths) && len(value) > widths[i] {
				widths[i] = len(value)
			}
		}
	}
	return widths
}

func (t *Table) line(values []string, widths []int) string {
	cells := make([]string, len(widths))
	for i := range widths {
		value := ""
		if i < len(values) {
			value = values[i]
		}
		cells[i] = value + strings.Repeat(" ", widths[i]-len(value))
	}
	return "| " + strings.Join(cells, " | ") + " |"
}

// String renders an aligned table with a header separator row.
func (t *Table) String() string {
	widths := t.widths()

	separators := make([]string, len(widths))
	for i, w := range widths {
		separators[i] = strings.Repeat("-", w)
	}

	lines := []string{t.line(t.header, widths), t.line(separators, widths)}
	for _, row := range t.rows {
		lines = append(lines, t.line(row, widths))
	}
	return strings.Join(lines, "\n")
}

// Markdown renders the table in GitHub flavored markdown.
func (t *Table) Markdown() string {
	headerCells := strings.Join(t.header, " | ")
	separators := make([]string, len(t.header))
	for i := range t.header {
		separators[i] = "----"
	}

	lines := []string{headerCells, strings.Join(separators, " | ")}
	for _, row := range t.rows {
		lines = append(lines, strings.Join(row, " | "))
	}
	return strings.Join(lines, "\n")
}
