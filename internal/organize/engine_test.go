package organize_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"filecat/internal/config"
	serr "filecat/internal/errors"
	"filecat/internal/organize"
	"filecat/pkg/testutils"
	"filecat/pkg/types"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSummarizer records what it was asked and answers from its fields.
type fakeSummarizer struct {
	mu          sync.Mutex
	text        string
	err         error
	calls       int
	got         []types.InventoryRecord
	hadDeadline bool
}

func (f *fakeSummarizer) Summarize(ctx context.Context, records []types.InventoryRecord) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.got = records
	_, f.hadDeadline = ctx.Deadline()
	return f.text, f.err
}

// setupRoot creates <tmp>/data with a few files and returns both paths.
func setupRoot(t *testing.T) (base, root string) {
	t.Helper()
	base = t.TempDir()
	root = filepath.Join(base, "data")
	testutils.CreateTestFilesWithContent(t, root, map[string]string{
		"a.txt":            "hello",
		"b.txt":            "world",
		"sub/b.unknownext": "?",
		"sub/pic.png":      "",
	})
	return base, root
}

func testConfig() *config.Config {
	cfg := config.NewTestConfig()
	cfg.Export.Format = config.FormatCSV
	return cfg
}

func TestRunWithoutSummary(t *testing.T) {
	base, root := setupRoot(t)
	engine := organize.NewWithConfig(testConfig())

	var stages []organize.Stage
	engine.OnStage(func(s organize.Stage) { stages = append(stages, s) })

	result, err := engine.Run(context.Background(), root)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.NotEqual(t, uuid.Nil, result.ScanID)
	assert.Len(t, result.Records, 4)
	assert.Equal(t, types.TypeCount{FileType: "Text File", Count: 2}, result.Tally[0])
	assert.Equal(t, filepath.Join(base, "scan_results.csv"), result.ExportPath)
	assert.FileExists(t, result.ExportPath)
	assert.Empty(t, result.Narrative)
	assert.Empty(t, result.NarrativePath)

	assert.Equal(t, []organize.Stage{organize.StageScanning, organize.StageExporting, organize.StageDone}, stages)
}

func TestRunWithSummary(t *testing.T) {
	base, root := setupRoot(t)
	cfg := testConfig()
	cfg.Summarize.Enabled = true
	cfg.Summarize.HTML = true

	fake := &fakeSummarizer{text: "| Drive | File |\n|---|---|\n|  | a.txt |\n"}
	engine := organize.NewWithConfig(cfg)
	engine.SetSummarizer(fake)

	var stages []organize.Stage
	engine.OnStage(func(s organize.Stage) { stages = append(stages, s) })

	result, err := engine.Run(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, 1, fake.calls)
	assert.Equal(t, result.Records, fake.got)
	assert.True(t, fake.hadDeadline, "summarize call must be bounded by the configured timeout")

	assert.Equal(t, filepath.Join(base, "organised.txt"), result.NarrativePath)
	data, err := os.ReadFile(result.NarrativePath)
	require.NoError(t, err)
	assert.Equal(t, fake.text, string(data))

	assert.Equal(t, filepath.Join(base, "organised.html"), result.HTMLPath)
	html, err := os.ReadFile(result.HTMLPath)
	require.NoError(t, err)
	assert.Contains(t, string(html), "<table>")

	assert.Equal(t, []organize.Stage{
		organize.StageScanning,
		organize.StageExporting,
		organize.StageSummarizing,
		organize.StageWriting,
		organize.StageDone,
	}, stages)
}

func TestRunSummaryFailureKeepsExport(t *testing.T) {
	base, root := setupRoot(t)
	cfg := testConfig()
	cfg.Summarize.Enabled = true

	t.Run("remote error is returned as is", func(t *testing.T) {
		remote := serr.NewRemoteError("quota exceeded", "gemini", 429, nil)
		engine := organize.NewWithConfig(cfg)
		engine.SetSummarizer(&fakeSummarizer{err: remote})

		result, err := engine.Run(context.Background(), root)
		require.Error(t, err)
		assert.Same(t, remote, err)

		require.NotNil(t, result)
		assert.FileExists(t, result.ExportPath)
		assert.Len(t, result.Records, 4)
		assert.Empty(t, result.NarrativePath)
		assert.NoFileExists(t, filepath.Join(base, "organised.txt"))
	})

	t.Run("other errors become remote errors", func(t *testing.T) {
		engine := organize.NewWithConfig(cfg)
		engine.SetSummarizer(&fakeSummarizer{err: errors.New("boom")})

		result, err := engine.Run(context.Background(), root)
		require.Error(t, err)
		assert.True(t, serr.IsRemoteError(err))
		assert.Contains(t, err.Error(), "boom")
		assert.NotNil(t, result)
	})
}

func TestRunMissingAPIKey(t *testing.T) {
	_, root := setupRoot(t)
	cfg := testConfig()
	cfg.Summarize.Enabled = true
	cfg.Summarize.APIKeyEnv = "FILECAT_ENGINE_TEST_KEY"
	t.Setenv("FILECAT_ENGINE_TEST_KEY", "")

	result, err := organize.NewWithConfig(cfg).Run(context.Background(), root)
	require.Error(t, err)
	assert.True(t, serr.IsConfigNotSet(err))
	require.NotNil(t, result)
	assert.FileExists(t, result.ExportPath)
}

func TestRunScanErrors(t *testing.T) {
	t.Run("invalid root", func(t *testing.T) {
		engine := organize.NewWithConfig(testConfig())
		result, err := engine.Run(context.Background(), filepath.Join(t.TempDir(), "missing"))
		assert.Nil(t, result)
		assert.True(t, serr.IsInvalidInputError(err))
	})

	t.Run("empty root writes nothing", func(t *testing.T) {
		base := t.TempDir()
		root := filepath.Join(base, "empty")
		testutils.CreateTestDirs(t, root, "nested")

		fake := &fakeSummarizer{text: "unused"}
		cfg := testConfig()
		cfg.Summarize.Enabled = true
		engine := organize.NewWithConfig(cfg)
		engine.SetSummarizer(fake)

		result, err := engine.Run(context.Background(), root)
		assert.Nil(t, result)
		assert.True(t, serr.IsEmptyResult(err))
		assert.Zero(t, fake.calls)
		assert.NoFileExists(t, filepath.Join(base, "scan_results.csv"))
	})
}

func TestRunOverrides(t *testing.T) {
	base, root := setupRoot(t)
	cfg := testConfig()
	cfg.Summarize.Enabled = true

	fake := &fakeSummarizer{text: "x"}
	engine := organize.NewWithConfig(cfg)
	engine.SetSummarizer(fake)
	engine.SetSummarize(false)
	engine.SetFormat(config.FormatJSON)
	engine.SetExportPath(filepath.Join(base, "custom.json"))

	var seen int
	engine.OnProgress(func(n int, path string) { seen = n })

	result, err := engine.Run(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "custom.json"), result.ExportPath)
	assert.FileExists(t, result.ExportPath)
	assert.Zero(t, fake.calls)
	assert.Equal(t, 4, seen)

	_, err = os.Stat(filepath.Join(base, "scan_results.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRunInvalidFormat(t *testing.T) {
	_, root := setupRoot(t)
	engine := organize.NewWithConfig(testConfig())
	engine.SetFormat("ods")

	result, err := engine.Run(context.Background(), root)
	require.Error(t, err)
	assert.True(t, serr.IsInvalidConfig(err))
	require.NotNil(t, result)
	assert.Empty(t, result.ExportPath)
}

func TestRunsGetDistinctScanIDs(t *testing.T) {
	_, root := setupRoot(t)
	engine := organize.NewWithConfig(testConfig())

	first, err := engine.Run(context.Background(), root)
	require.NoError(t, err)
	second, err := engine.Run(context.Background(), root)
	require.NoError(t, err)

	assert.NotEqual(t, first.ScanID, second.ScanID)
	assert.Equal(t, first.Records, second.Records)
}

func TestConcurrentRunsAreSerialized(t *testing.T) {
	_, root := setupRoot(t)
	engine := organize.NewWithConfig(testConfig())

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := engine.Run(context.Background(), root)
			assert.NoError(t, err)
			if result != nil {
				assert.Len(t, result.Records, 4)
			}
		}()
	}
	wg.Wait()
}

func TestStageString(t *testing.T) {
	assert.Equal(t, "Scanning", organize.StageScanning.String())
	assert.Equal(t, "Writing narrative", organize.StageWriting.String())
	assert.Equal(t, "Stage(42)", organize.Stage(42).String())
}

func TestFactoryUsesConfig(t *testing.T) {
	base, root := setupRoot(t)
	cfg := testConfig()
	cfg.Export.Format = config.FormatJSON

	result, err := organize.NewOrganizer(cfg).Run(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "scan_results.json"), result.ExportPath,
		"the default factory builds an engine from the given config")
}

func TestSetFactory(t *testing.T) {
	var got *config.Config
	custom := organize.NewWithConfig(testConfig())
	restore := organize.SetFactory(func(cfg *config.Config) organize.Organizer {
		got = cfg
		return custom
	})

	cfg := testConfig()
	assert.Same(t, custom, organize.NewOrganizer(cfg))
	assert.Same(t, cfg, got)

	restore()
	assert.NotSame(t, custom, organize.NewOrganizer(cfg))

	organize.SetFactory(nil)()
	_, isEngine := organize.NewOrganizer(cfg).(*organize.Engine)
	assert.True(t, isEngine, "a nil factory falls back to the default")
}

func TestCancelledRun(t *testing.T) {
	_, root := setupRoot(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)

	result, err := organize.NewWithConfig(testConfig()).Run(ctx, root)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
