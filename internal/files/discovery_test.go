package files

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("a,b\n1,2\n"), 0644))
	return path
}

func TestNewDiscovery(t *testing.T) {
	discovery := NewDiscovery("/test/base")

	assert.NotNil(t, discovery)
	assert.Equal(t, "/test/base", discovery.basePath)
}

func TestFindTabularFiles(t *testing.T) {
	tests := []struct {
		name          string
		files         []string
		expectedCount int
	}{
		{
			name:          "only supported files",
			files:         []string{"a.csv", "b.xls", "c.XLSX"},
			expectedCount: 3,
		},
		{
			name:          "mixed file types",
			files:         []string{"a.csv", "doc.pdf", "readme.txt", "b.xlsx"},
			expectedCount: 2,
		},
		{
			name:          "lock files skipped",
			files:         []string{"~$report.xlsx", "report.xlsx"},
			expectedCount: 1,
		},
		{
			name:          "no supported files",
			files:         []string{"doc.pdf", "readme.txt"},
			expectedCount: 0,
		},
		{
			name:          "empty directory",
			files:         []string{},
			expectedCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for _, name := range tt.files {
				touch(t, dir, name)
			}

			found, err := NewDiscovery("").FindTabularFiles(dir)
			require.NoError(t, err)
			assert.Len(t, found, tt.expectedCount)
			for _, f := range found {
				assert.NotEmpty(t, f.Format)
				assert.False(t, f.ModTime.IsZero())
			}
		})
	}
}

func TestFindTabularFilesMissingDirectory(t *testing.T) {
	_, err := NewDiscovery("").FindTabularFiles("/does/not/exist")
	assert.Error(t, err)
}

func TestFindTabularFilesRelativeToBase(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(base, "inputs"), 0755))
	touch(t, filepath.Join(base, "inputs"), "data.csv")

	found, err := NewDiscovery(base).FindTabularFiles("inputs")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "data.csv", found[0].Name)
	assert.Equal(t, "csv", found[0].Format)
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	csvPath := touch(t, dir, "one.csv")
	touch(t, dir, "two.xlsx")
	touch(t, dir, "skip.txt")

	t.Run("explicit file", func(t *testing.T) {
		found, err := NewDiscovery("").Resolve([]string{csvPath})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, csvPath, found[0].Path)
	})

	t.Run("directory argument", func(t *testing.T) {
		found, err := NewDiscovery("").Resolve([]string{dir})
		require.NoError(t, err)
		assert.Len(t, found, 2)
	})

	t.Run("glob pattern", func(t *testing.T) {
		found, err := NewDiscovery("").Resolve([]string{filepath.Join(dir, "*.csv")})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "one.csv", found[0].Name)
	})

	t.Run("duplicates collapse", func(t *testing.T) {
		found, err := NewDiscovery("").Resolve([]string{csvPath, csvPath, dir})
		require.NoError(t, err)
		assert.Len(t, found, 2)
	})

	t.Run("sorted by path", func(t *testing.T) {
		found, err := NewDiscovery("").Resolve([]string{dir})
		require.NoError(t, err)
		require.Len(t, found, 2)
		assert.True(t, found[0].Path < found[1].Path)
	})

	t.Run("unsupported explicit file", func(t *testing.T) {
		_, err := NewDiscovery("").Resolve([]string{filepath.Join(dir, "skip.txt")})
		assert.Error(t, err)
	})

	t.Run("no match is an error", func(t *testing.T) {
		_, err := NewDiscovery("").Resolve([]string{filepath.Join(dir, "*.xls")})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "no supported files match")
	})

	t.Run("missing path is an error", func(t *testing.T) {
		_, err := NewDiscovery("").Resolve([]string{filepath.Join(dir, "absent.csv")})
		assert.Error(t, err)
	})
}

func TestGetLatestFile(t *testing.T) {
	now := time.Now()
	files := []FileInfo{
		{Name: "old.csv", ModTime: now.Add(-2 * time.Hour)},
		{Name: "new.csv", ModTime: now},
		{Name: "mid.csv", ModTime: now.Add(-1 * time.Hour)},
	}

	latest, ok := GetLatestFile(files)
	require.True(t, ok)
	assert.Equal(t, "new.csv", latest.Name)

	_, ok = GetLatestFile(nil)
	assert.False(t, ok)
}
