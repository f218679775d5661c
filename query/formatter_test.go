package query

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/goccy/go-yaml"

	"github.com/shibukawa/sqlshard/routing"
)

func sampleResult() *QueryResult {
	return &QueryResult{
		Units:   []routing.RouteUnit{{DataSource: "ds_0", SQL: "SELECT id, note FROM t_order_0"}},
		Columns: []string{"id", "note"},
		Rows: [][]any{
			{int64(1), "first, with comma"},
			{int64(2), nil},
		},
		Count: 2,
	}
}

func TestFormatterTable(t *testing.T) {
	var buf bytes.Buffer

	err := NewFormatter(FormatTable).Write(sampleResult(), &buf)
	assert.NoError(t, err)
	assert.Equal(t, "id  note\n1   first, with comma\n2   NULL\n2 rows (Time: 0s)\n", buf.String())
}

func TestFormatterTableAffectedRows(t *testing.T) {
	var buf bytes.Buffer

	result := &QueryResult{
		Units:        []routing.RouteUnit{{DataSource: "ds_0"}, {DataSource: "ds_1"}},
		RowsAffected: 4,
	}

	err := NewFormatter(FormatTable).Write(result, &buf)
	assert.NoError(t, err)
	assert.Equal(t, "4 rows affected on 2 units (Time: 0s)\n", buf.String())
}

func TestFormatterCSV(t *testing.T) {
	var buf bytes.Buffer

	err := NewFormatter(FormatCSV).Write(sampleResult(), &buf)
	assert.NoError(t, err)
	assert.Equal(t, "id,note\n1,\"first, with comma\"\n2,NULL\n", buf.String())
}

func TestFormatterJSON(t *testing.T) {
	var buf bytes.Buffer

	err := NewFormatter(FormatJSON).Write(sampleResult(), &buf)
	assert.NoError(t, err)

	var doc struct {
		Count int              `json:"count"`
		Data  []map[string]any `json:"data"`
		Units []routing.RouteUnit
	}

	assert.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, 2, doc.Count)
	assert.Equal(t, "first, with comma", doc.Data[0]["note"])
	assert.Equal(t, "ds_0", doc.Units[0].DataSource)
}

func TestFormatterYAML(t *testing.T) {
	var buf bytes.Buffer

	err := NewFormatter(FormatYAML).Write(sampleResult(), &buf)
	assert.NoError(t, err)

	var doc struct {
		Count int              `yaml:"count"`
		Data  []map[string]any `yaml:"data"`
	}

	assert.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, 2, doc.Count)
	assert.Equal(t, 2, len(doc.Data))
}

func TestFormatterInvalid(t *testing.T) {
	err := NewFormatter("xml").Write(sampleResult(), &bytes.Buffer{})
	assert.IsError(t, err, ErrInvalidOutputFormat)

	assert.True(t, IsValidOutputFormat("JSON"))
	assert.False(t, IsValidOutputFormat("markdown"))
}

func TestFormatterCSVAffectedRows(t *testing.T) {
	var buf bytes.Buffer

	err := NewFormatter(FormatCSV).Write(&QueryResult{RowsAffected: 3}, &buf)
	assert.NoError(t, err)
	assert.Equal(t, "rows_affected\n3\n", buf.String())
}
