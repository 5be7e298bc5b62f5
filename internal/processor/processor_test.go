// SPDX-License-Identifier: MIT

package processor

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sportarr/sportarr/internal/config"
	"github.com/sportarr/sportarr/internal/metadata"
	"github.com/sportarr/sportarr/internal/processed"
)

type fakeProvider struct {
	payload []byte
	calls   int
}

func (f *fakeProvider) Fetch(_ context.Context, _ string) ([]byte, error) {
	f.calls++
	return f.payload, nil
}

func monacoPayload(t *testing.T, seasonTitle string) []byte {
	t.Helper()
	raw := metadata.RawShow{
		Show: "Formula 1",
		Seasons: []metadata.RawSeason{
			{Key: "r5", Number: 5, Title: seasonTitle, Round: 5, Year: 2025,
				Episodes: []metadata.RawEpisode{
					{Number: 1, Title: "Practice 1"},
					{Number: 2, Title: "Qualifying"},
					{Number: 3, Title: "Race"},
				}},
		},
	}
	payload, err := json.Marshal(raw)
	require.NoError(t, err)
	return payload
}

type testEnv struct {
	cfg      *config.Config
	provider *fakeProvider
	p        *Processor
}

func newTestEnv(t *testing.T, payload []byte) *testEnv {
	t.Helper()
	cfg := &config.Config{
		SourceDir:      t.TempDir(),
		DestinationDir: filepath.Join(t.TempDir(), "library"),
		CacheDir:       t.TempDir(),
		SkipExisting:   true,
		LinkMode:       config.LinkModeHardlink,
		Provider:       config.Defaults().Provider,
		Sports: []config.Sport{{
			ID:               "formula1_2025",
			Name:             "Formula 1",
			ShowRef:          "formula-1-2025",
			SourceExtensions: []string{".mkv", ".mp4"},
			PatternSets:      []string{"motorsport_round"},
			LinkMode:         config.LinkModeHardlink,
			Destination: config.DestinationTemplates{
				RootTemplate:     "{show_title} {season_year}",
				SeasonTemplate:   "{season_number:02} {season_title}",
				FilenameTemplate: "{show_title} - S{season_number:02}E{episode_number:02} - {episode_title}{suffix}",
			},
		}},
	}
	require.NoError(t, config.Validate(cfg))

	provider := &fakeProvider{payload: payload}
	// TTL zero forces a refetch every pass, so payload swaps take effect.
	store, err := metadata.NewStore(cfg.CacheDir, provider, 0)
	require.NoError(t, err)
	ledger, err := metadata.LoadFingerprintLedger(cfg.CacheDir)
	require.NoError(t, err)
	procStore, err := processed.Open(cfg.CacheDir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = procStore.Close() })

	return &testEnv{cfg: cfg, provider: provider, p: New(cfg, store, ledger, procStore)}
}

func (e *testEnv) writeSource(t *testing.T, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(e.cfg.SourceDir, name), []byte(content), 0o644))
}

func (e *testEnv) destPath(parts ...string) string {
	return filepath.Join(append([]string{e.cfg.DestinationDir}, parts...)...)
}

func TestRunPassLinksMatchedFile(t *testing.T) {
	env := newTestEnv(t, monacoPayload(t, "Monaco Grand Prix"))
	env.writeSource(t, "Formula.1.2025.Round05.Monaco.Race.mkv", "race bytes")

	report, err := env.p.RunPass(context.Background(), "manual")
	require.NoError(t, err)

	assert.Equal(t, 1, report.Discovered)
	assert.Equal(t, 1, report.Linked)
	assert.False(t, report.HasFailures())
	assert.Equal(t, 1, report.Sports["formula1_2025"].Linked)

	want := env.destPath("Formula 1 2025", "05 Monaco Grand Prix", "Formula 1 - S05E03 - Race.mkv")
	content, err := os.ReadFile(want)
	require.NoError(t, err)
	assert.Equal(t, "race bytes", string(content))
}

func TestRunPassSkipsAlreadyProcessed(t *testing.T) {
	env := newTestEnv(t, monacoPayload(t, "Monaco Grand Prix"))
	env.writeSource(t, "Formula.1.2025.Round05.Monaco.Race.mkv", "race bytes")

	_, err := env.p.RunPass(context.Background(), "manual")
	require.NoError(t, err)

	second, err := env.p.RunPass(context.Background(), "reconcile")
	require.NoError(t, err)
	assert.Equal(t, 0, second.Linked)
	assert.Equal(t, 1, second.Skipped["already_processed"])
}

func TestRunPassDryRunTouchesNothing(t *testing.T) {
	env := newTestEnv(t, monacoPayload(t, "Monaco Grand Prix"))
	env.cfg.DryRun = true
	env.p = New(env.cfg, env.p.store, env.p.ledger, env.p.processed)
	env.writeSource(t, "Formula.1.2025.Round05.Monaco.Race.mkv", "race bytes")

	report, err := env.p.RunPass(context.Background(), "manual")
	require.NoError(t, err)

	assert.Equal(t, 0, report.Linked)
	require.Len(t, report.WouldWrite, 1)
	assert.Contains(t, report.WouldWrite[0], "Formula 1 - S05E03 - Race.mkv")

	entries, err := os.ReadDir(env.cfg.DestinationDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunPassEmptySource(t *testing.T) {
	env := newTestEnv(t, monacoPayload(t, "Monaco Grand Prix"))

	report, err := env.p.RunPass(context.Background(), "manual")
	require.NoError(t, err)
	assert.Equal(t, 0, report.Discovered)
	assert.Equal(t, 0, report.Linked)
	assert.False(t, report.HasFailures())
}

func TestRunPassSampleAndUnmatchedAreSkips(t *testing.T) {
	env := newTestEnv(t, monacoPayload(t, "Monaco Grand Prix"))
	env.writeSource(t, "Formula.1.2025.Round05.Monaco.Race.sample.mkv", "sample bytes")
	env.writeSource(t, "holiday.video.mkv", "noise")

	report, err := env.p.RunPass(context.Background(), "manual")
	require.NoError(t, err)
	assert.Equal(t, 0, report.Linked)
	assert.Equal(t, 1, report.Skipped["sample"])
	assert.Equal(t, 1, report.Skipped["no_pattern_matched"])
	assert.False(t, report.HasFailures())
}

func TestRunPassUnknownRoundIsFailure(t *testing.T) {
	env := newTestEnv(t, monacoPayload(t, "Monaco Grand Prix"))
	env.writeSource(t, "Formula.1.2025.Round09.Elsewhere.Race.mkv", "mystery")

	report, err := env.p.RunPass(context.Background(), "manual")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed["season_not_found"])
	assert.True(t, report.HasFailures())
}

func TestRunPassRepackReplacesExisting(t *testing.T) {
	env := newTestEnv(t, monacoPayload(t, "Monaco Grand Prix"))
	env.writeSource(t, "Formula.1.2025.Round05.Monaco.Race.mkv", "original")

	_, err := env.p.RunPass(context.Background(), "manual")
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(env.cfg.SourceDir, "Formula.1.2025.Round05.Monaco.Race.mkv")))
	env.writeSource(t, "Formula.1.2025.Round05.Monaco.Race.REPACK.mkv", "fixed")

	report, err := env.p.RunPass(context.Background(), "events")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Replaced)

	want := env.destPath("Formula 1 2025", "05 Monaco Grand Prix", "Formula 1 - S05E03 - Race.mkv")
	content, err := os.ReadFile(want)
	require.NoError(t, err)
	assert.Equal(t, "fixed", string(content))
}

func TestRunPassMetadataChangeRelinks(t *testing.T) {
	env := newTestEnv(t, monacoPayload(t, "Monaco Grand Prix"))
	env.writeSource(t, "Formula.1.2025.Round05.Monaco.Race.mkv", "race bytes")

	_, err := env.p.RunPass(context.Background(), "manual")
	require.NoError(t, err)
	oldDest := env.destPath("Formula 1 2025", "05 Monaco Grand Prix", "Formula 1 - S05E03 - Race.mkv")
	require.FileExists(t, oldDest)

	// The provider renames the event; stale destinations must be pruned
	// and relinked under the new name in the same pass.
	env.provider.payload = monacoPayload(t, "Monte Carlo Grand Prix")

	report, err := env.p.RunPass(context.Background(), "reconcile")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Linked)

	assert.NoFileExists(t, oldDest)
	newDest := env.destPath("Formula 1 2025", "05 Monte Carlo Grand Prix", "Formula 1 - S05E03 - Race.mkv")
	assert.FileExists(t, newDest)
}
