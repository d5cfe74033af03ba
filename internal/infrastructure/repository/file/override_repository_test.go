package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOverrideRepository_Load(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	t.Run("json sections", func(t *testing.T) {
		path := write("overrides.json", `{
			"by_date": {"2025-09-20": "Sky Sports"},
			"by_exact": {"2025-10-25 Brighton": {"tv": "TNT Sports", "highlights": ["https://a", "https://b"]}}
		}`)
		table, err := NewOverrideRepository(path).Load(context.Background())
		require.NoError(t, err)
		require.Equal(t, "Sky Sports", table.ByDate["2025-09-20"].TV)
		require.Equal(t, "TNT Sports", table.ByExact["2025-10-25 Brighton"].TV)
		require.Equal(t, "https://a", table.ByExact["2025-10-25 Brighton"].Highlights)
	})

	t.Run("legacy flat json", func(t *testing.T) {
		path := write("tv_overrides.json", `{"2025-09-20 Chelsea": "Sky Sports"}`)
		table, err := NewOverrideRepository(path).Load(context.Background())
		require.NoError(t, err)
		require.Equal(t, "Sky Sports", table.ByExact["2025-09-20 Chelsea"].TV)
	})

	t.Run("yaml", func(t *testing.T) {
		path := write("overrides.yml", "by_date:\n  \"2025-09-20\": Sky Sports\nby_exact:\n  \"2025-10-25 Brighton\":\n    tv: TNT Sports\n")
		table, err := NewOverrideRepository(path).Load(context.Background())
		require.NoError(t, err)
		require.Equal(t, "Sky Sports", table.ByDate["2025-09-20"].TV)
		require.Equal(t, "TNT Sports", table.ByExact["2025-10-25 Brighton"].TV)
	})

	t.Run("missing file", func(t *testing.T) {
		table, err := NewOverrideRepository(filepath.Join(dir, "nope.json")).Load(context.Background())
		require.NoError(t, err)
		require.True(t, table.IsEmpty())
	})

	t.Run("malformed", func(t *testing.T) {
		path := write("broken.json", `{"by_date": [`)
		_, err := NewOverrideRepository(path).Load(context.Background())
		require.Error(t, err)
	})
}
