package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ridelog/internal/geo"
	"ridelog/internal/service"
	"ridelog/internal/source"
	"ridelog/internal/store"
	"ridelog/internal/stream"
)

type testEnv struct {
	dir    string
	config string
	db     string
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	dir := t.TempDir()
	return testEnv{
		dir:    dir,
		config: filepath.Join(dir, "config.yaml"),
		db:     filepath.Join(dir, "data.db"),
	}
}

// run executes one ridelog invocation and returns its standard output
func (e testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd, a := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", e.config, "--db", e.db, "--log-level", "error"}, args...))

	err := cmd.ExecuteContext(context.Background())
	require.NoError(t, a.close())
	return out.String(), err
}

// seed imports a ride that travels 1000 m east along the equator at 200 W
// for an athlete with an FTP of 250 W
func (e testEnv) seed(t *testing.T, start time.Time) int64 {
	t.Helper()
	return e.importRide(t, start, 250)
}

// importRide imports the equator ride, recording ftp in the history first
// unless it is zero
func (e testEnv) importRide(t *testing.T, start time.Time, ftp float64) int64 {
	t.Helper()

	s, err := store.Open(e.db, nil)
	require.NoError(t, err)
	defer s.Close()

	if ftp > 0 {
		entry := store.ThresholdEntry{Date: time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC), Value: ftp}
		require.NoError(t, s.SaveThreshold(context.Background(), 1, store.ThresholdFTP, entry))
	}

	var track []geo.NullLatLng
	for i := 0; i < 20; i++ {
		track = append(track, geo.Point(0.01, 0))
	}
	for j := 0; j <= 100; j++ {
		track = append(track, geo.Point(0, 0.00009*float64(j)))
	}
	for i := 0; i < 20; i++ {
		track = append(track, geo.Point(0.01, 0.009))
	}

	spacing := geo.Distance(geo.LatLng{}, geo.LatLng{Lng: 0.00009})
	power := make(stream.Stream, len(track))
	distance := make(stream.Stream, len(track))
	for i := range track {
		power[i] = stream.Of(200)
		distance[i] = stream.Of(float64(i) * spacing)
	}
	ride := &source.Ride{Start: start, Duration: len(track) - 1, Distance: float64(len(track)-1) * spacing, Track: track}
	ride.SetStream(stream.Power, power)
	ride.SetStream(stream.Distance, distance)

	scanner := service.NewSegmentService(s, s, s, service.ScanOptions{Workers: 1})
	importer := service.NewImportService(s, s, scanner, service.ImportOptions{UserID: 1})
	res, err := importer.Import(context.Background(), ride, "Equator Loop")
	require.NoError(t, err)
	return res.Activity.ID
}

func TestInitWritesExampleConfig(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "init")
	require.NoError(t, err)
	assert.Contains(t, out, env.config)

	_, err = os.Stat(env.config)
	require.NoError(t, err)
}

func TestMigrate(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "at schema version")
	assert.NotContains(t, out, "dirty")
}

func TestEmptyDatabase(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "activity", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No activities yet")

	out, err = env.run(t, "segment", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No segments yet")

	out, err = env.run(t, "fitness")
	require.NoError(t, err)
	assert.Contains(t, out, "No scored activities")
}

func TestThresholdHistory(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, time.Date(2024, 6, 4, 7, 0, 0, 0, time.UTC))

	out, err := env.run(t, "ftp", "add", "200", "--date", "2024-01-01")
	require.NoError(t, err)
	assert.Contains(t, out, "FTP 200 W from 2024-01-01")
	assert.Contains(t, out, "Recomputed 1 activities")

	out, err = env.run(t, "ftp", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "2024-01-01")

	_, err = env.run(t, "lthr", "add", "165", "--date", "2024-01-01")
	require.NoError(t, err)
	out, err = env.run(t, "lthr", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "165 bpm")

	_, err = env.run(t, "ftp", "add", "zero")
	assert.Error(t, err)
	_, err = env.run(t, "ftp", "add", "250", "--date", "June")
	assert.Error(t, err)
}

func TestActivityAndSegmentCommands(t *testing.T) {
	env := newTestEnv(t)
	first := env.seed(t, time.Date(2024, 6, 4, 7, 0, 0, 0, time.UTC))
	env.seed(t, time.Date(2024, 6, 5, 7, 0, 0, 0, time.UTC))
	id := func(v int64) string { return strconv.FormatInt(v, 10) }

	out, err := env.run(t, "activity", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Equator Loop")

	out, err = env.run(t, "segment", "create", "--activity", id(first), "--start", "20", "--end", "121", "--name", "Equator")
	require.NoError(t, err)
	assert.Contains(t, out, `Created segment 1 "Equator"`)
	assert.Contains(t, out, "segment 1: 2 segment efforts saved")

	out, err = env.run(t, "segment", "results", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "2024-06-04")
	assert.Contains(t, out, "2024-06-05")

	out, err = env.run(t, "activity", "show", id(first))
	require.NoError(t, err)
	assert.Contains(t, out, "Equator Loop")
	assert.Contains(t, out, "Power zones")
	assert.Contains(t, out, "Equator")
	assert.Contains(t, out, "1/2")

	_, err = env.run(t, "activity", "lap", "add", id(first), "20", "121")
	require.NoError(t, err)
	out, err = env.run(t, "activity", "show", id(first))
	require.NoError(t, err)
	assert.Contains(t, out, "Laps")
	_, err = env.run(t, "activity", "lap", "add", id(first), "100", "10")
	assert.Error(t, err)
	out, err = env.run(t, "activity", "lap", "remove", id(first), "0")
	require.NoError(t, err)
	assert.Contains(t, out, "has 0 laps")

	out, err = env.run(t, "segment", "scan", "--activity", id(first))
	require.NoError(t, err)
	assert.Contains(t, out, "1 segment efforts saved")

	_, err = env.run(t, "segment", "scan")
	assert.Error(t, err)

	parquet := filepath.Join(env.dir, "ride.parquet")
	out, err = env.run(t, "export", id(first), "--out", parquet)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 141 samples")
	_, err = os.Stat(parquet)
	require.NoError(t, err)

	_, err = env.run(t, "segment", "rename", "1", "Equator Sprint")
	require.NoError(t, err)
	out, err = env.run(t, "segment", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Equator Sprint")

	_, err = env.run(t, "activity", "delete", id(first))
	require.NoError(t, err)
	_, err = env.run(t, "activity", "show", id(first))
	assert.ErrorIs(t, err, store.ErrActivityNotFound)

	_, err = env.run(t, "segment", "delete", "1")
	require.NoError(t, err)
	_, err = env.run(t, "segment", "results", "1")
	assert.ErrorIs(t, err, store.ErrSegmentNotFound)
}

func TestImportWithoutFTPHistory(t *testing.T) {
	env := newTestEnv(t)
	id := env.importRide(t, time.Date(2024, 6, 4, 7, 0, 0, 0, time.UTC), 0)

	out, err := env.run(t, "activity", "show", strconv.FormatInt(id, 10))
	require.NoError(t, err)
	assert.Contains(t, out, "Equator Loop")
	assert.NotContains(t, out, "Power zones")

	out, err = env.run(t, "fitness")
	require.NoError(t, err)
	assert.Contains(t, out, "No scored activities")
}

func TestImportReportsBadFiles(t *testing.T) {
	env := newTestEnv(t)
	bad := filepath.Join(env.dir, "broken.fit")
	require.NoError(t, os.WriteFile(bad, []byte("not a fit file"), 0644))

	out, err := env.run(t, "import", bad)
	assert.Error(t, err)
	assert.Contains(t, out, "broken.fit")
}

func TestFlagsOverrideConfigFile(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, os.WriteFile(env.config, []byte("athlete:\n  user_id: 4\nmatching:\n  workers: 2\n"), 0600))

	cmd, a := newRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetArgs([]string{"--config", env.config, "--db", env.db, "--workers", "5", "migrate"})
	require.NoError(t, cmd.Execute())
	defer a.close()

	assert.Equal(t, int64(4), a.cfg.Athlete.UserID)
	assert.Equal(t, 5, a.cfg.Matching.Workers)
	assert.Equal(t, env.db, a.cfg.Storage.Database)
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "0:59", formatDuration(59))
	assert.Equal(t, "1:01:05", formatDuration(3665))
	assert.Equal(t, "12.3 km", formatDistance(12345))
	assert.Equal(t, "-", formatOptional(nil, "%.0f"))
	tss := 1234
	assert.Equal(t, "1,234", formatOptionalInt(&tss))
	assert.Equal(t, "abc...", truncateName("abcdefghij", 6))
	assert.Len(t, downsample(make([]float64, 600), 60), 60)
	assert.Empty(t, chart([]float64{1, 2}, 0))
}

func TestRecords(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "records")
	require.NoError(t, err)
	assert.Contains(t, out, "No records yet")

	env.seed(t, time.Date(2024, 6, 4, 7, 0, 0, 0, time.UTC))

	out, err = env.run(t, "records")
	require.NoError(t, err)
	assert.Contains(t, out, "200 W")
	assert.Contains(t, out, "2024-06-04")
	assert.Contains(t, out, "Equator Loop")

	out, err = env.run(t, "records", "--since", "2024-07-01")
	require.NoError(t, err)
	assert.Contains(t, out, "No records yet")

	_, err = env.run(t, "records", "--since", "June")
	require.Error(t, err)
}
