package errlog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCreatesDirAndAppends(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs", "nested")
	l := New(dir)
	l.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

	cause := errors.New("connection refused")
	require.NoError(t, l.Write("GET /", fmt.Errorf("list products: %w", cause)))
	require.NoError(t, l.Write("POST /admin/api/product", cause))

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "2024-01-02T03:04:05Z\tGET /\tlist products: connection refused", lines[0])
	assert.Contains(t, lines[1], "POST /admin/api/product")
}
