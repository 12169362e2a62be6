package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	configtoml "github.com/bnema/lineserver/internal/adapters/config/toml"
	"github.com/bnema/lineserver/internal/application"
	"github.com/bnema/lineserver/internal/domain"
	"github.com/bnema/lineserver/internal/version"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionPrintsVersion(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Equal(t, version.Version+"\n", stdout)
}

func TestServeRequiresLineFile(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "serve")
	require.Error(t, err)
	assert.ErrorIs(t, err, configtoml.ErrMissingLineFile)
}

func TestServeRejectsMissingFile(t *testing.T) {
	home := t.TempDir()

	_, _, err := executeCLI(t, home, "serve", filepath.Join(home, "missing.txt"), "--addr", "127.0.0.1:0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load lines from")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestServeRejectsBadLogFormat(t *testing.T) {
	home := t.TempDir()
	path := writeLineFile(t, home, "fox\n")

	_, _, err := executeCLI(t, home, "serve", path, "--log-format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported log format")
}

func TestServeUntilShutdownCommand(t *testing.T) {
	home := t.TempDir()
	setTestHome(t, home)
	path := writeLineFile(t, home, "the\nquick brown\nfox\n")
	addr := freeAddr(t)

	root, stdout, _ := newTestRoot("serve", path, "--addr", addr, "--log-level", "error")
	result := make(chan error, 1)
	go func() {
		result <- root.Execute()
	}()

	require.Eventually(t, func() bool {
		conn, err := net.Dial("tcp", addr)
		if err != nil {
			return false
		}
		_ = conn.Close()
		return true
	}, 5*time.Second, 20*time.Millisecond)

	line, _, err := executeCLI(t, home, "get", "1", "--addr", addr)
	require.NoError(t, err)
	assert.Equal(t, "quick brown\n", line)

	out, _, err := executeCLI(t, home, "shutdown", "--addr", addr)
	require.NoError(t, err)
	assert.Equal(t, "shutdown requested\n", out)

	select {
	case err := <-result:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after SHUTDOWN")
	}
	assert.Contains(t, stdout.String(), "listening on "+addr)
}

func TestGetPrintsLine(t *testing.T) {
	addr := startTestServer(t, "the", "quick brown", "fox")

	stdout, _, err := executeCLI(t, t.TempDir(), "get", "2", "--addr", addr)
	require.NoError(t, err)
	assert.Equal(t, "fox\n", stdout)
}

func TestGetReportsServerError(t *testing.T) {
	addr := startTestServer(t, "the", "quick brown", "fox")

	_, _, err := executeCLI(t, t.TempDir(), "get", "abc", "--addr", addr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid digit found in string. Is ABC an unsigned integer under 65536?")

	_, _, err = executeCLI(t, t.TempDir(), "get", "7", "--addr", addr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to retrieve line 7. There are only 3 lines available.")
}

func TestGetUsesAddrFromEnvironment(t *testing.T) {
	addr := startTestServer(t, "only")
	t.Setenv("LINESERVER_SERVER_ADDR", addr)

	stdout, _, err := executeCLI(t, t.TempDir(), "get", "0")
	require.NoError(t, err)
	assert.Equal(t, "only\n", stdout)
}

func TestGetFailsWhenNothingListens(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "get", "0", "--addr", freeAddr(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dial ")
}

func TestInspectRendersSummary(t *testing.T) {
	home := t.TempDir()
	path := writeLineFile(t, home, "the\n\nquick brown\nfox\n")

	stdout, _, err := executeCLI(t, home, "inspect", path, "--preview", "1")
	require.NoError(t, err)
	assert.Contains(t, stdout, "lines: 4")
	assert.Contains(t, stdout, "blank: 1")
	assert.Contains(t, stdout, "the")
	assert.NotContains(t, stdout, "quick brown")
}

func TestInspectJSONOutput(t *testing.T) {
	home := t.TempDir()
	path := writeLineFile(t, home, "the\nfox\n")

	stdout, _, err := executeCLI(t, home, "inspect", "--file", path, "--json")
	require.NoError(t, err)
	require.True(t, json.Valid([]byte(stdout)))

	var summary struct {
		Source string
		Stats  domain.LineStats
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &summary))
	assert.Equal(t, path, summary.Source)
	assert.Equal(t, 2, summary.Stats.Total)
}

func TestInspectRequiresFile(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "inspect")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line file is required")
}

func TestInspectUsesConfigFile(t *testing.T) {
	home := t.TempDir()
	path := writeLineFile(t, home, "from config\n")
	configPath := filepath.Join(home, "custom.toml")

	_, _, err := executeCLI(t, home, "config", "init", "--path", configPath, "--file", path)
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, "inspect", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "from config")
}

func TestConfigInitThenShow(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, stdout, "lineserver.toml")

	stdout, _, err = executeCLI(t, home, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "127.0.0.1:10497")
	assert.Contains(t, stdout, "control_buffer = 1000")
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	home := t.TempDir()
	path := filepath.Join(home, "lineserver.toml")

	_, _, err := executeCLI(t, home, "config", "init", "--path", path)
	require.NoError(t, err)

	_, _, err = executeCLI(t, home, "config", "init", "--path", path)
	require.Error(t, err)
	assert.ErrorIs(t, err, configtoml.ErrConfigExists)

	_, _, err = executeCLI(t, home, "config", "init", "--path", path, "--force")
	require.NoError(t, err)
}

func executeCLI(t *testing.T, home string, args ...string) (string, string, error) {
	t.Helper()
	setTestHome(t, home)

	root, stdout, stderr := newTestRoot(args...)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func newTestRoot(args ...string) (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)
	return root, stdout, stderr
}

func setTestHome(t *testing.T, home string) {
	t.Helper()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
}

func writeLineFile(t *testing.T, dir, content string) string {
	t.Helper()

	path := filepath.Join(dir, "lines.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func freeAddr(t *testing.T) string {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())
	return addr
}

func startTestServer(t *testing.T, lines ...string) string {
	t.Helper()

	coordinator, err := application.Listen("127.0.0.1:0", domain.NewLines(lines), application.CoordinatorConfig{
		Log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = coordinator.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	return coordinator.Addr().String()
}

func TestInspectRejectsNegativeWidth(t *testing.T) {
	home := t.TempDir()
	path := writeLineFile(t, home, "fox\n")

	_, _, err := executeCLI(t, home, "inspect", path, "--width", "-3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "preview width must not be negative")
}
