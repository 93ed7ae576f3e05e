package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const moviesCSV = "Title,ReleaseYear,Genre,Rating,Director,Actors\n" +
	"Inception,2010,Sci-Fi,8.8,Christopher Nolan,\"Leonardo DiCaprio, Joseph Gordon-Levitt\"\n" +
	"Heat,1995,Crime,N/A,Michael Mann,Al Pacino\n"

// setupEnv points the CLI at a fresh SQLite database and returns a
// directory for input and output files.
func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("DATABASE_URL", "sqlite:"+filepath.Join(dir, "movies.db"))
	t.Setenv("LOG_LEVEL", "error")
	return dir
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestLoadExportStats(t *testing.T) {
	dir := setupEnv(t)
	path := writeFile(t, dir, "movies.csv", moviesCSV)

	out, err := run(t, "load", path)
	require.NoError(t, err)
	assert.Contains(t, out, "2 rows committed")
	assert.Contains(t, out, "actors created:    3")

	out, err = run(t, "export")
	require.NoError(t, err)
	assert.Equal(t,
		"Title,ReleaseYear,Genre,Rating,Director,Actor\n"+
			"Inception,2010,Sci-Fi,8.8,Christopher Nolan,Leonardo DiCaprio\n"+
			"Inception,2010,Sci-Fi,8.8,Christopher Nolan,Joseph Gordon-Levitt\n"+
			"Heat,1995,Crime,,Michael Mann,Al Pacino\n",
		out)

	out, err = run(t, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "movies")
	assert.Regexp(t, `movie_actor\s+3`, out)
}

func TestExport_FilterToFile(t *testing.T) {
	dir := setupEnv(t)
	path := writeFile(t, dir, "movies.csv", moviesCSV)
	_, err := run(t, "load", path)
	require.NoError(t, err)

	target := filepath.Join(dir, "mann.csv")
	out, err := run(t, "export", "--director", "Mann", "-o", target)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t,
		"Title,ReleaseYear,Genre,Rating,Director,Actor\n"+
			"Heat,1995,Crime,,Michael Mann,Al Pacino\n",
		string(data))
}

func TestLoad_Errors(t *testing.T) {
	dir := setupEnv(t)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "missing argument",
			args:    []string{"load"},
			wantErr: "accepts 1 arg",
		},
		{
			name:    "file does not exist",
			args:    []string{"load", filepath.Join(dir, "nope.csv")},
			wantErr: "open",
		},
		{
			name:    "unsupported format",
			args:    []string{"load", writeFile(t, dir, "movies.txt", moviesCSV)},
			wantErr: "unsupported file format",
		},
		{
			name:    "unknown profile",
			args:    []string{"load", writeFile(t, dir, "a.csv", moviesCSV), "--profile", "imdb"},
			wantErr: "unknown",
		},
		{
			name: "row failure reports line",
			args: []string{"load", writeFile(t, dir, "bad.csv",
				"Title,ReleaseYear,Genre,Rating,Director,Actors\n"+
					"Heat,nineteen,Crime,8.3,Michael Mann,Al Pacino\n")},
			wantErr: "line 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_URL", "")

	_, err := run(t, "stats")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}
