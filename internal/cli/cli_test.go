package cli

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pfrederiksen/venue-scraper/internal/pipeline"
	"github.com/pfrederiksen/venue-scraper/internal/scraper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testArticle = `<html><body><main>
	<div class="card">
		<h3><a href="/london/venue/bluebird-cafe">1. Bluebird Café</a></h3>
		<p>What is it? A cosy nook.</p>
		<p>Why we love it: The flat whites.</p>
	</div>
	<div class="card">
		<h3>2. Arch Coffee Bar</h3>
		<p>What is it? Espresso under the railway.</p>
		<p>Address: 3 Arch Rd</p>
	</div>
</main></body></html>`

const testVenuePage = `<html><body>
	<a href="tel:+442071234567">Call</a>
	<a rel="nofollow" href="https://bluebird.example">Website</a>
	<address>12 High St, London E1 6AN</address>
</body></html>`

func newSite(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/london/cafes", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testArticle))
	})
	mux.HandleFunc("/london/venue/bluebird-cafe", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testVenuePage))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

// fastConfig writes a config without courtesy delays
func fastConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "fetch:\n  retries: 1\n  delay_min: 0s\n  delay_max: 0s\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func execute(t *testing.T, ctx context.Context, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.ExecuteContext(ctx)
	return stdout.String(), stderr.String(), err
}

func TestRun_WritesFilesAndSummary(t *testing.T) {
	server := newSite(t)
	dataDir := t.TempDir()
	args := []string{"--config", fastConfig(t), "--url", server.URL + "/london/cafes", "--data-dir", dataDir}

	stdout, stderr, err := execute(t, context.Background(), args...)
	require.NoError(t, err)

	assert.Contains(t, stdout, "Bluebird Café")
	assert.Contains(t, stdout, "12 High St, London E1 6AN")
	assert.Contains(t, stdout, "3 Arch Rd")
	assert.Contains(t, stdout, "Total: 2 venues (strategy: sections)")
	assert.Contains(t, stdout, "New since last run: 2")
	assert.Contains(t, stdout, "Saved:")
	assert.Contains(t, stderr, "[ 1/2] Bluebird Café")
	assert.Contains(t, stderr, `"message":"Extracted venues"`)

	assert.FileExists(t, filepath.Join(dataDir, "venues.csv"))
	assert.FileExists(t, filepath.Join(dataDir, "venues.xlsx"))
	assert.FileExists(t, filepath.Join(dataDir, "snapshot.json"))

	written, err := os.ReadFile(filepath.Join(dataDir, "venues.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(written), "+442071234567")
	assert.Contains(t, string(written), "https://bluebird.example")

	// A second run over the same article finds nothing new
	stdout, _, err = execute(t, context.Background(), args...)
	require.NoError(t, err)
	assert.NotContains(t, stdout, "New since last run")
}

func TestRun_JSONDryRun(t *testing.T) {
	server := newSite(t)
	dataDir := filepath.Join(t.TempDir(), "out")

	stdout, _, err := execute(t, context.Background(),
		"--config", fastConfig(t),
		"--url", server.URL+"/london/cafes",
		"--data-dir", dataDir,
		"--format", "json",
		"--dry-run",
		"--max-items", "1",
	)
	require.NoError(t, err)

	var result OutputResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	assert.Equal(t, scraper.StrategySections, result.Strategy)
	assert.Equal(t, 1, result.VenueCount)
	require.Len(t, result.Venues, 1)
	assert.Equal(t, "Bluebird Café", result.Venues[0].Name)
	assert.Equal(t, "+442071234567", result.Venues[0].Phone)
	assert.Equal(t, "12 High St, London E1 6AN", result.Venues[0].Address)
	assert.True(t, result.DryRun)
	assert.Empty(t, result.Files)
	assert.Contains(t, result.Metrics, "counters")

	assert.NoDirExists(t, dataDir)
}

func TestRun_SortByName(t *testing.T) {
	server := newSite(t)

	stdout, _, err := execute(t, context.Background(),
		"--config", fastConfig(t),
		"--url", server.URL+"/london/cafes",
		"--format", "json",
		"--dry-run",
		"--sort", "name",
	)
	require.NoError(t, err)

	var result OutputResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	require.Len(t, result.Venues, 2)
	assert.Equal(t, "Arch Coffee Bar", result.Venues[0].Name)
	assert.Equal(t, "Bluebird Café", result.Venues[1].Name)
}

func TestRun_SortLeavesFilesInArticleOrder(t *testing.T) {
	server := newSite(t)
	dataDir := t.TempDir()

	stdout, _, err := execute(t, context.Background(),
		"--config", fastConfig(t),
		"--url", server.URL+"/london/cafes",
		"--data-dir", dataDir,
		"--sort", "name",
	)
	require.NoError(t, err)

	assert.Less(t, strings.Index(stdout, "Arch Coffee Bar"), strings.Index(stdout, "Bluebird Café"))

	f, err := os.Open(filepath.Join(dataDir, "venues.csv"))
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "Bluebird Café", records[1][0])
	assert.Equal(t, "Arch Coffee Bar", records[2][0])
}

func TestRun_FlagOverridesInvalidEnvironment(t *testing.T) {
	server := newSite(t)
	t.Setenv("VENUE_ARTICLE_URL", "not a url")

	stdout, _, err := execute(t, context.Background(),
		"--config", fastConfig(t),
		"--url", server.URL+"/london/cafes",
		"--dry-run",
	)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Total: 2 venues")
}

func TestRun_ArticleFetchFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()
	dataDir := filepath.Join(t.TempDir(), "out")

	// A cancelled context cuts the retry wait short
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := execute(t, ctx,
		"--config", fastConfig(t),
		"--url", server.URL+"/london/cafes",
		"--data-dir", dataDir,
	)

	require.Error(t, err)
	assert.ErrorIs(t, err, pipeline.ErrArticleFetch)
	assert.NoDirExists(t, dataDir)
}

func TestRun_InvalidFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"format", []string{"--format", "xml"}, "invalid format"},
		{"sort", []string{"--sort", "rating"}, "invalid sort"},
		{"relative url", []string{"--url", "/london/cafes"}, "article.url"},
		{"zero max items", []string{"--max-items", "0"}, "rules.max_items"},
		{"missing config", []string{"--config", "/nonexistent/config.yaml"}, "loading config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, context.Background(), tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
