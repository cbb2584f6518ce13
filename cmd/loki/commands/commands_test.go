package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/loki/internal/config"
	"git.home.luguber.info/inful/loki/internal/foundation/errors"
	"git.home.luguber.info/inful/loki/internal/testutil"
)

// run parses args and runs the selected command, returning command and log output.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, logs bytes.Buffer
	cli := CLI{out: &logs, stdOut: &stdout}
	parser, err := kong.New(&cli, kong.Name("loki"), kong.Vars{"version": "test"})
	require.NoError(t, err)

	kctx, err := parser.Parse(args)
	if err != nil {
		return stdout.String(), logs.String(), err
	}
	err = kctx.Run(&Global{Logger: cli.Logger(), Context: context.Background()}, &cli)
	return stdout.String(), logs.String(), err
}

func newSource(t *testing.T) string {
	t.Helper()
	src := t.TempDir()
	testutil.WriteFile(t, src, "views/index.html", "id 'home'\ntitle 'Home'\n--\nhello\n")
	return src
}

func TestBuildCommand(t *testing.T) {
	src, dst := newSource(t), t.TempDir()

	out, _, err := run(t, "build", src, dst)
	require.NoError(t, err)
	assert.Contains(t, out, "Built 1 documents into ")

	testutil.NewFileAssertions(t, dst).
		AssertFileContains("index.html", "<title>Home</title>").
		AssertFileNotExists("sitemap.xml")
}

func TestBuildCommand_SitemapFlag(t *testing.T) {
	src, dst := newSource(t), t.TempDir()

	_, _, err := run(t, "build", "--sitemap", "https://example.org/", "--verify-links", src, dst)
	require.NoError(t, err)

	testutil.NewFileAssertions(t, dst).
		AssertFileContains("sitemap.xml", "<loc>https://example.org/index.html</loc>")
}

func TestBuildCommand_SameSourceAndDest(t *testing.T) {
	src := newSource(t)

	_, _, err := run(t, "build", src, src)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
	assert.Equal(t, 7, errors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))
}

func TestCheckCommand(t *testing.T) {
	src := newSource(t)

	out, _, err := run(t, "check", src)
	require.NoError(t, err)
	assert.Equal(t, "1 documents OK\n", out)
}

func TestCheckCommand_ReportsContentErrors(t *testing.T) {
	src := newSource(t)
	testutil.WriteFile(t, src, "views/other.html", "id 'home'\n--\nclash\n")

	_, _, err := run(t, "check", src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate id 'home'")
	assert.Equal(t, 2, errors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))
}

func TestVerboseEnablesDebugLogs(t *testing.T) {
	src, dst := newSource(t), t.TempDir()

	_, logs, err := run(t, "-v", "build", src, dst)
	require.NoError(t, err)
	assert.Contains(t, logs, "level=DEBUG")
}

func TestConfigFile(t *testing.T) {
	src, dst := newSource(t), t.TempDir()
	cfgPath := filepath.Join(t.TempDir(), "loki.yaml")
	testutil.WriteFile(t, filepath.Dir(cfgPath), "loki.yaml", "logging:\n  format: json\n  level: warn\n")

	_, logs, err := run(t, "--config", cfgPath, "build", src, dst)
	require.NoError(t, err)
	for _, line := range strings.Split(strings.TrimSpace(logs), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry), line)
	}
	assert.NotContains(t, logs, "Starting build")
}

func TestConfigFile_Missing(t *testing.T) {
	_, _, err := run(t, "--config", filepath.Join(t.TempDir(), "absent.yaml"), "check", newSource(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration file not found")
}

func TestNewLogger_Precedence(t *testing.T) {
	var buf bytes.Buffer
	t.Setenv(LogLevelEnv, "error")

	logger := NewLogger(&buf, config.LoggingConfig{Level: config.LogLevelDebug}, false)
	assert.False(t, logger.Enabled(context.Background(), slog.LevelWarn))

	logger = NewLogger(&buf, config.LoggingConfig{Level: config.LogLevelError}, true)
	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
}
