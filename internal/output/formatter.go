package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
)

const (
	// tabwriterPadding is the padding between columns in table output
	tabwriterPadding = 2

	ResultOK      = "ok"
	ResultFailed  = "failed"
	ResultSkipped = "skipped"
)

// Formatter prints tables for the end-of-run summaries
type Formatter struct {
	writer io.Writer
}

// NewFormatter creates a new output formatter. A nil writer means stdout.
func NewFormatter(w io.Writer) *Formatter {
	if w == nil {
		w = os.Stdout
	}
	return &Formatter{
		writer: w,
	}
}

// Table represents a table with headers and rows
type Table struct {
	Headers []string
	Rows    [][]string
}

// PrintTable prints the table with aligned columns
func (f *Formatter) PrintTable(table Table) error {
	if len(table.Rows) == 0 {
		fmt.Fprintln(f.writer, "No data found")
		return nil
	}

	w := tabwriter.NewWriter(f.writer, 0, 0, tabwriterPadding, ' ', 0)

	fmt.Fprintln(w, strings.Join(table.Headers, "\t"))
	for _, row := range table.Rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}

	return w.Flush()
}

// PrintMessage prints a simple message
func (f *Formatter) PrintMessage(message string) {
	fmt.Fprintln(f.writer, message)
}

// Summary records the outcome of each step for every item of a multi-item
// operation, such as delete and create for each index of a reset. Rows are
// kept in the order they were added, so two items with the same name stay
// two rows.
type Summary struct {
	kind     string
	steps    []string
	rows     []summaryRow
	failures int
}

type summaryRow struct {
	item    string
	results map[string]string
}

// NewSummary creates a summary for items of the given kind (e.g. "INDEX")
func NewSummary(kind string, steps ...string) *Summary {
	return &Summary{
		kind:  kind,
		steps: steps,
	}
}

// Add appends a row for item and returns its position, used to record the
// outcome of its steps
func (s *Summary) Add(item string) int {
	s.rows = append(s.rows, summaryRow{
		item:    item,
		results: make(map[string]string),
	})
	return len(s.rows) - 1
}

// Record stores the outcome of one step for the row at pos
func (s *Summary) Record(pos int, step string, err error) {
	result := ResultOK
	if err != nil {
		result = ResultFailed
		s.failures++
	}
	s.rows[pos].results[step] = result
}

// Skip marks a row whose steps were never attempted, counting it as a failure
func (s *Summary) Skip(pos int) {
	for _, step := range s.steps {
		s.rows[pos].results[step] = ResultSkipped
	}
	s.failures++
}

// Failures returns the number of failed or skipped steps and items
func (s *Summary) Failures() int {
	return s.failures
}

// Table renders the summary, one row per item in the order added
func (s *Summary) Table() Table {
	headers := append([]string{s.kind}, s.steps...)
	table := Table{
		Headers: headers,
		Rows:    make([][]string, 0, len(s.rows)),
	}

	for _, r := range s.rows {
		row := []string{r.item}
		for _, step := range s.steps {
			result := r.results[step]
			if result == "" {
				result = ResultSkipped
			}
			row = append(row, result)
		}
		table.Rows = append(table.Rows, row)
	}

	return table
}
