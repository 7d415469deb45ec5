package editrans

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// fixture reads a file from testdata. X12 fixtures keep one segment per
// line for readability; the parser's character-set cleanup strips the
// newlines, so they can be fed in as-is.
func fixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return data
}

func rowFields(t *testing.T, row Row) map[string]string {
	t.Helper()
	out := make(map[string]string, row.Len())
	for _, f := range row.Fields() {
		out[f] = row.Get(f)
	}
	return out
}
