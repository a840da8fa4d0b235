package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"newzyx/internal/api"
	"newzyx/internal/preflight"
	"newzyx/internal/testsupport"
)

func TestEpisodesCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"episodes", "--json", "-n", "3"}, env.configPath)
	if err != nil {
		t.Fatalf("episodes: %v", err)
	}
	var resp api.CatalogResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(resp.Episodes) != 3 {
		t.Fatalf("expected 3 episodes, got %d", len(resp.Episodes))
	}
	for i, ep := range resp.Episodes {
		if ep.ID != dayID(i) {
			t.Fatalf("episode %d = %s, want %s", i, ep.ID, dayID(i))
		}
	}

	out, _, err = runCLI(t, []string{"episodes"}, env.configPath)
	if err != nil {
		t.Fatalf("episodes table: %v", err)
	}
	requireContains(t, out, dayID(0))
	requireContains(t, out, dayID(9))
}

func TestLatestCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	env.store.put(summaryName(dayID(2)), "news")

	out, _, err := runCLI(t, []string{"latest"}, env.configPath)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	requireContains(t, out, "("+dayID(2)+")")
	if strings.Contains(out, "No published summary") {
		t.Fatalf("expected a confirmed episode:\n%s", out)
	}
}

func TestLatestCommandFallsBackToToday(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"latest", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	var resp api.LatestResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Confirmed || resp.Episode.ID != dayID(0) {
		t.Fatalf("unexpected fallback: %+v", resp)
	}
}

func TestReadCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	env.store.put(summaryName(dayID(1)), "<p>First story</p><ul><li>Point</li></ul>")

	out, _, err := runCLI(t, []string{"read", dayID(1)}, env.configPath)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	requireContains(t, out, "First story")
	requireContains(t, out, "• Point")
	requireContains(t, out, "Updated: ")

	out, _, err = runCLI(t, []string{"read", dayID(0)}, env.configPath)
	if err == nil {
		t.Fatal("expected error for missing summary")
	}
	requireContains(t, out, "Could not load news summary for this date.")
	requireContains(t, out, "Server error: 404")

	if _, _, err := runCLI(t, []string{"read", "not-a-date"}, env.configPath); err == nil {
		t.Fatal("expected error for malformed id")
	}
}

func TestProbeCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	env.store.put(podcastName(dayID(0)), "ID3")

	out, _, err := runCLI(t, []string{"probe", dayID(0), "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	var resp api.ExistsResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Summary || !resp.Podcast {
		t.Fatalf("unexpected probe: %+v", resp)
	}
}

func TestCheckCommand(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithStubbedBinaries())
	env.store.put(summaryName(dayID(0)), "news")

	out, _, err := runCLI(t, []string{"check", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	var results []preflight.Result
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if failed := preflight.Failed(results); len(failed) != 0 {
		t.Fatalf("unexpected failures: %+v", failed)
	}
	last := results[len(results)-1]
	if !last.Passed || !strings.Contains(last.Detail, "Connection successful") {
		t.Fatalf("unexpected store check: %+v", last)
	}
}

func TestCheckCommandFailsWithoutFFprobe(t *testing.T) {
	env := setupCLITestEnv(t)
	env.cfg.Player.FFprobeBinary = filepath.Join(env.baseDir, "missing-ffprobe")
	writeTestConfig(t, env.configPath, env.cfg)

	out, _, err := runCLI(t, []string{"check"}, env.configPath)
	if err == nil {
		t.Fatalf("expected check failure:\n%s", out)
	}
	requireContains(t, out, "fail")
}

func TestFeedCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	env.store.put(summaryName(dayID(0)), "Today's news")
	env.store.put(summaryName(dayID(3)), "Older news")

	target := filepath.Join(env.baseDir, "out", "feed.xml")
	out, _, err := runCLI(t, []string{"feed", "--output", target}, env.configPath)
	if err != nil {
		t.Fatalf("feed: %v", err)
	}
	requireContains(t, out, "Wrote 2 episode(s)")
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read feed: %v", err)
	}
	body := string(data)
	requireContains(t, body, "<rss")
	requireContains(t, body, podcastName(dayID(3)))
	if strings.Count(body, "<item>") != 2 {
		t.Fatalf("expected 2 items:\n%s", body)
	}
}

func TestPlayCommand(t *testing.T) {
	env := setupCLITestEnv(t,
		testsupport.WithScript("ffprobe", `echo '{"streams":[{"codec_type":"audio","duration":"1.5"}],"format":{"duration":"1.5"}}'`+"\n"),
		testsupport.WithScript("ffplay", "sleep 0.2\n"),
	)

	out, _, err := runCLI(t, []string{"play", dayID(1)}, env.configPath)
	if err != nil {
		t.Fatalf("play: %v\n%s", err, out)
	}
	requireContains(t, out, "Loading ")
	requireContains(t, out, "(0:00 / 0:01)")
	requireContains(t, out, "Finished.")
}

func TestPlayCommandReportsInterruptedStream(t *testing.T) {
	env := setupCLITestEnv(t,
		testsupport.WithScript("ffprobe", `echo '{"streams":[{"codec_type":"audio","duration":"30"}],"format":{"duration":"30"}}'`+"\n"),
		testsupport.WithScript("ffplay", "echo 'connection reset by peer' >&2\nexit 1\n"),
	)

	out, _, err := runCLI(t, []string{"play", dayID(1)}, env.configPath)
	if err == nil || !strings.HasPrefix(err.Error(), "Playback failed: ") {
		t.Fatalf("expected playback failure, got %v\n%s", err, out)
	}
	if strings.Contains(out, "Finished.") {
		t.Fatalf("interrupted stream reported as finished:\n%s", out)
	}
}

func TestPlayCommandReportsLoadFailure(t *testing.T) {
	env := setupCLITestEnv(t,
		testsupport.WithScript("ffprobe", "echo 'no such file' >&2\nexit 1\n"),
		testsupport.WithScript("ffplay", "exit 0\n"),
	)

	_, _, err := runCLI(t, []string{"play", dayID(0)}, env.configPath)
	if err == nil || !strings.HasPrefix(err.Error(), "Failed to load audio") {
		t.Fatalf("expected load failure, got %v", err)
	}
}

func TestConfigCommands(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")

	out, _, err = runCLI(t, []string{"config", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, env.store.baseURL())
	requireContains(t, out, "[source]")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse overwrite")
	}
}
