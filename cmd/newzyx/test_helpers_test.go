package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"newzyx/internal/catalog"
	"newzyx/internal/config"
	"newzyx/internal/datekey"
	"newzyx/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	store      *fakeStore
	configPath string
	baseDir    string
}

// fakeStore serves episode files from memory under /bucket.
type fakeStore struct {
	mu    sync.Mutex
	files map[string]string
	srv   *httptest.Server
}

func (s *fakeStore) put(name, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files["/bucket/"+name] = body
}

func (s *fakeStore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	body, ok := s.files[r.URL.Path]
	s.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Last-Modified", "Sun, 09 Mar 2025 14:30:00 GMT")
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write([]byte(body))
}

func (s *fakeStore) baseURL() string {
	return s.srv.URL + "/bucket"
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	store := &fakeStore{files: map[string]string{}}
	store.srv = httptest.NewServer(store)
	t.Cleanup(store.srv.Close)

	opts = append([]testsupport.ConfigOption{testsupport.WithBaseURL(store.baseURL())}, opts...)
	cfg := testsupport.NewConfig(t, opts...)
	cfg.Source.WindowDays = 10
	cfg.Source.ProbeLimit = 5
	cfg.Feed.ScanDays = 5

	base := testsupport.BaseDir(cfg)
	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		store:      store,
		configPath: configPath,
		baseDir:    base,
	}
}

// dayID returns the id for today minus offset days.
func dayID(offset int) string {
	return datekey.FromTime(time.Now()).AddDays(-offset).String()
}

func summaryName(id string) string { return id + catalog.SummarySuffix }

func podcastName(id string) string { return id + catalog.PodcastSuffix }

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	testsupport.WriteFile(t, path, data)
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
