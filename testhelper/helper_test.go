package testhelper

import (
	"os"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestTrimIndent(t *testing.T) {
	src := `
		dialect: mysql
		sharding:
		  tables: {}
		`

	assert.Equal(t, "dialect: mysql\nsharding:\n  tables: {}\n", TrimIndent(t, src))
	assert.Equal(t, "single line", TrimIndent(t, "single line"))
}

func TestWriteFile(t *testing.T) {
	path := WriteFile(t, "", "q.sql", "SELECT 1")

	data, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Equal(t, "SELECT 1", string(data))
}
