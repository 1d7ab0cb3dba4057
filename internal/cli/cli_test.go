package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/tally/internal/model"
	"github.com/dukerupert/tally/internal/stats"
)

// isolate points every config source at fresh temp dirs.
func isolate(t *testing.T) string {
	t.Helper()
	dataDir := t.TempDir()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("TALLY_CONFIG_PATH", t.TempDir())
	t.Setenv("TALLY_DATA_DIR", dataDir)
	chdir(t, t.TempDir())
	return dataDir
}

func run(t *testing.T, clk clockwork.Clock, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(clk)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func fakeClock() *clockwork.FakeClock {
	return clockwork.NewFakeClockAt(time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC))
}

func TestCheckinThenStatsJSON(t *testing.T) {
	isolate(t)
	clk := fakeClock()

	out, err := run(t, clk, "checkin", "--trigger", "coffee", "--mood", "6")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged Smoking check-in at 09:00")

	clk.Advance(30 * time.Minute)
	_, err = run(t, clk, "checkin")
	require.NoError(t, err)

	out, err = run(t, clk, "stats", "--json")
	require.NoError(t, err)

	var report stats.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, stats.ScopeToday, report.Scope)
	assert.Equal(t, 2, report.Count)
	require.NotNil(t, report.AverageIntervalMinutes)
	assert.InDelta(t, 30.0, *report.AverageIntervalMinutes, 0.001)
	require.NotNil(t, report.AverageMood)
	assert.InDelta(t, 6.0, *report.AverageMood, 0.001)
	require.Len(t, report.Triggers, 1)
	assert.Equal(t, "coffee", report.Triggers[0].Trigger)
}

func TestCheckinRejectsMoodWithoutTrigger(t *testing.T) {
	isolate(t)
	clk := fakeClock()

	_, err := run(t, clk, "checkin", "--mood", "4")
	require.Error(t, err)

	out, err := run(t, clk, "stats", "--json")
	require.NoError(t, err)
	var report stats.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Zero(t, report.Count)
}

func TestStatsRejectsUnknownScope(t *testing.T) {
	isolate(t)
	_, err := run(t, fakeClock(), "stats", "week")
	assert.Error(t, err)
}

func TestRecentValidatesCount(t *testing.T) {
	isolate(t)
	_, err := run(t, fakeClock(), "recent", "-n", "0")
	assert.Error(t, err)
}

func TestSettingsSaveAndShow(t *testing.T) {
	isolate(t)
	clk := fakeClock()

	out, err := run(t, clk, "settings")
	require.NoError(t, err)
	assert.Contains(t, out, model.DefaultHabitName)
	assert.Contains(t, out, "60 min")

	out, err = run(t, clk, "settings", "--habit", "Coffee", "--interval", "5000")
	require.NoError(t, err)
	assert.Contains(t, out, "Settings saved")
	assert.Contains(t, out, "1440 min")

	out, err = run(t, clk, "settings")
	require.NoError(t, err)
	assert.Contains(t, out, "Coffee")
	assert.Contains(t, out, model.DefaultNotifyTitle)
}

func TestExportClearImport(t *testing.T) {
	isolate(t)
	clk := fakeClock()
	snapshot := filepath.Join(t.TempDir(), "export.json")

	_, err := run(t, clk, "checkin", "--trigger", "stress")
	require.NoError(t, err)

	out, err := run(t, clk, "export", "-o", snapshot)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 1 check-ins")

	raw, err := os.ReadFile(snapshot)
	require.NoError(t, err)
	var exp model.Export
	require.NoError(t, json.Unmarshal(raw, &exp))
	require.Len(t, exp.Data.Records, 1)
	assert.Equal(t, "stress", exp.Data.Records[0].Trigger)

	_, err = run(t, clk, "clear")
	assert.ErrorIs(t, err, errNotConfirmed)

	out, err = run(t, clk, "clear", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "All data cleared")

	out, err = run(t, clk, "recent")
	require.NoError(t, err)
	assert.NotContains(t, out, "stress")

	out, err = run(t, clk, "import", snapshot)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 1 check-ins")

	out, err = run(t, clk, "recent")
	require.NoError(t, err)
	assert.Contains(t, out, "stress")
}

func TestImportRejectsMissingSections(t *testing.T) {
	isolate(t)
	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"data":{"records":[]}}`), 0o600))

	_, err := run(t, fakeClock(), "import", bad)
	assert.Error(t, err)
}

func TestExportToS3RequiresBucket(t *testing.T) {
	isolate(t)
	_, err := run(t, fakeClock(), "export", "--s3")
	assert.Error(t, err)
}

func TestVapidPrintsKeyPair(t *testing.T) {
	isolate(t)
	out, err := run(t, fakeClock(), "vapid")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "TALLY_VAPID_PUBLIC_KEY="))
	assert.True(t, strings.HasPrefix(lines[1], "TALLY_VAPID_PRIVATE_KEY="))
	assert.Greater(t, len(lines[0]), len("TALLY_VAPID_PUBLIC_KEY="))
}

func TestRelayCommands(t *testing.T) {
	isolate(t)

	var (
		subscribed   model.Subscription
		unsubscribed string
		pushed       string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/save-subscription":
			_ = json.NewDecoder(r.Body).Decode(&subscribed)
			w.WriteHeader(http.StatusCreated)
			_, _ = io.WriteString(w, `{"message":"added"}`)
		case "/api/remove-subscription":
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			unsubscribed = body["endpoint"]
			w.WriteHeader(http.StatusCreated)
			_, _ = io.WriteString(w, `{"message":"removed"}`)
		case "/api/send-push":
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			pushed = body["message"]
			_, _ = io.WriteString(w, `{"message":"go outside","attempted":2,"delivered":1,"pruned":1,"failed":0}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	t.Setenv("TALLY_RELAY_URL", srv.URL)

	subFile := filepath.Join(t.TempDir(), "sub.json")
	require.NoError(t, os.WriteFile(subFile,
		[]byte(`{"endpoint":"https://push.example/abc","keys":{"p256dh":"p","auth":"a"}}`), 0o600))

	clk := fakeClock()

	out, err := run(t, clk, "subscribe", subFile)
	require.NoError(t, err)
	assert.Contains(t, out, "Subscribed https://push.example/abc")
	assert.Equal(t, "https://push.example/abc", subscribed.Endpoint)
	assert.Equal(t, "p", subscribed.Keys.P256dh)

	out, err = run(t, clk, "push", "go outside")
	require.NoError(t, err)
	assert.Equal(t, "go outside", pushed)
	assert.Contains(t, out, "1 delivered, 1 pruned, 0 failed")

	_, err = run(t, clk, "unsubscribe", "https://push.example/abc")
	require.NoError(t, err)
	assert.Equal(t, "https://push.example/abc", unsubscribed)
}

func TestPushReportsRelayError(t *testing.T) {
	isolate(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"error":"too many requests"}`)
	}))
	t.Cleanup(srv.Close)

	_, err := run(t, fakeClock(), "--relay-url", srv.URL, "push")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too many requests")
}

func TestInvalidStoreKind(t *testing.T) {
	isolate(t)
	t.Setenv("TALLY_STORE", "redis")
	_, err := run(t, fakeClock(), "recent")
	assert.Error(t, err)
}

func TestProgressFromQuitSettings(t *testing.T) {
	isolate(t)
	clk := fakeClock()

	out, err := run(t, clk, "settings", "--quit-date", "2026-03-05", "--baseline", "10", "--price", "30", "--per-pack", "20")
	require.NoError(t, err)
	assert.Contains(t, out, "2026-03-05")

	_, err = run(t, clk, "checkin")
	require.NoError(t, err)

	out, err = run(t, clk, "progress", "--json")
	require.NoError(t, err)

	var p stats.Progress
	require.NoError(t, json.Unmarshal([]byte(out), &p))
	assert.Equal(t, 10, p.DaysSinceQuit)
	assert.Equal(t, 99, p.Avoided)
	assert.InDelta(t, 148.5, p.MoneySaved, 0.001)
	require.Len(t, p.Achievements, 5)
	assert.True(t, p.Achievements[1].Completed)

	out, err = run(t, clk, "progress")
	require.NoError(t, err)
	assert.Contains(t, out, "Milestones")
	assert.Contains(t, out, "One week strong")
}

func TestSettingsRejectsBadQuitDate(t *testing.T) {
	isolate(t)
	_, err := run(t, fakeClock(), "settings", "--quit-date", "yesterday")
	assert.Error(t, err)
}

// chdir changes the working directory for the duration of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
