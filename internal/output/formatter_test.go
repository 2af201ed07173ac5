package output

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFormatter(t *testing.T) {
	buf := &bytes.Buffer{}
	assert.Equal(t, buf, NewFormatter(buf).writer)
	assert.Equal(t, os.Stdout, NewFormatter(nil).writer)
}

func TestFormatter_PrintTable(t *testing.T) {
	tests := []struct {
		name          string
		table         Table
		expectedLines []string
	}{
		{
			name: "aligned columns",
			table: Table{
				Headers: []string{"INDEX", "DELETE", "CREATE"},
				Rows: [][]string{
					{"articles", "ok", "ok"},
					{"a", "failed", "ok"},
				},
			},
			expectedLines: []string{
				"INDEX     DELETE  CREATE",
				"articles  ok      ok",
				"a         failed  ok",
			},
		},
		{
			name: "empty table",
			table: Table{
				Headers: []string{"INDEX"},
			},
			expectedLines: []string{"No data found"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := NewFormatter(buf)

			require.NoError(t, formatter.PrintTable(tt.table))

			lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
			assert.Equal(t, tt.expectedLines, lines)
		})
	}
}

func TestFormatter_PrintMessage(t *testing.T) {
	buf := &bytes.Buffer{}
	NewFormatter(buf).PrintMessage("No pipelines to configure")
	assert.Equal(t, "No pipelines to configure\n", buf.String())
}

func TestSummary(t *testing.T) {
	summary := NewSummary("INDEX", "DELETE", "CREATE")

	articles := summary.Add("articles")
	summary.Record(articles, "DELETE", errors.New("index_not_found_exception"))
	summary.Record(articles, "CREATE", nil)
	authors := summary.Add("authors")
	summary.Record(authors, "DELETE", nil)
	summary.Record(authors, "CREATE", nil)
	summary.Skip(summary.Add("#3"))
	summary.Record(summary.Add("tags"), "DELETE", nil)

	assert.Equal(t, 2, summary.Failures())

	table := summary.Table()
	assert.Equal(t, []string{"INDEX", "DELETE", "CREATE"}, table.Headers)
	assert.Equal(t, [][]string{
		{"articles", ResultFailed, ResultOK},
		{"authors", ResultOK, ResultOK},
		{"#3", ResultSkipped, ResultSkipped},
		{"tags", ResultOK, ResultSkipped},
	}, table.Rows)
}

func TestSummary_DuplicateItems(t *testing.T) {
	summary := NewSummary("INDEX", "DELETE", "CREATE")

	first := summary.Add("articles")
	summary.Record(first, "DELETE", nil)
	summary.Record(first, "CREATE", nil)
	second := summary.Add("articles")
	summary.Record(second, "DELETE", nil)
	summary.Record(second, "CREATE", errors.New("resource_already_exists_exception"))

	assert.Equal(t, 1, summary.Failures())
	assert.Equal(t, [][]string{
		{"articles", ResultOK, ResultOK},
		{"articles", ResultOK, ResultFailed},
	}, summary.Table().Rows)
}

func TestSummary_Empty(t *testing.T) {
	summary := NewSummary("PIPELINE", "DELETE", "CREATE")

	assert.Zero(t, summary.Failures())
	assert.Empty(t, summary.Table().Rows)
}
