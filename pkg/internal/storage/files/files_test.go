package files_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/sociojustice/pkg/internal/storage/files"
)

func TestCleanRel(t *testing.T) {
	ok := map[string]string{
		"2025/01/a.pdf":      "2025/01/a.pdf",
		"2025/./01//a.pdf":   "2025/01/a.pdf",
		"2025/x/../01/a.pdf": "2025/01/a.pdf",
		`2025\01\a.pdf`:      "2025/01/a.pdf",
	}
	for in, want := range ok {
		got, err := files.CleanRel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	for _, bad := range []string{"", ".", "..", "../etc/passwd", "/etc/passwd", "a/../../b", "a\x00b"} {
		_, err := files.CleanRel(bad)
		assert.ErrorIs(t, err, files.ErrOutsideRoot, bad)
	}
}

func TestNewName(t *testing.T) {
	now := time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC)
	a, b := files.NewName(now), files.NewName(now)

	assert.Regexp(t, regexp.MustCompile(`^2025/03/[0-9a-z]{26}\.pdf$`), a)
	assert.NotEqual(t, a, b)
}

func TestLocalStore(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()

	store, err := files.NewLocal(root)
	require.NoError(t, err)
	assert.Equal(t, "local", store.Backend())

	require.NoError(t, store.Save(ctx, "2025/01/doc.pdf", strings.NewReader("%PDF-1.4"), 8))
	_, err = os.Stat(filepath.Join(root, "2025", "01", "doc.pdf"))
	require.NoError(t, err)

	rc, size, err := store.Open(ctx, "2025/01/doc.pdf")
	require.NoError(t, err)
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	assert.Equal(t, int64(8), size)
	assert.Equal(t, "%PDF-1.4", string(body))

	require.NoError(t, store.Remove(ctx, "2025/01/doc.pdf"))
	require.NoError(t, store.Remove(ctx, "2025/01/doc.pdf"))

	_, _, err = store.Open(ctx, "2025/01/doc.pdf")
	assert.ErrorIs(t, err, files.ErrNotFound)
}

func TestLocalStoreSandbox(t *testing.T) {
	ctx := context.Background()
	store, err := files.NewLocal(t.TempDir())
	require.NoError(t, err)

	err = store.Save(ctx, "../escape.pdf", strings.NewReader("x"), 1)
	assert.ErrorIs(t, err, files.ErrOutsideRoot)

	_, _, err = store.Open(ctx, "../../etc/passwd")
	assert.ErrorIs(t, err, files.ErrOutsideRoot)

	_, err = store.Resolve("/abs/path.pdf")
	assert.ErrorIs(t, err, files.ErrOutsideRoot)
}
