package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bnema/lineserver/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLineFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "lines.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestSourceLoadRoundTrip(t *testing.T) {
	path := writeLineFile(t, "the\nquick brown\nfox\njumps\n")

	lines, err := NewSource(path).Load(context.Background())
	require.NoError(t, err)

	require.Equal(t, 4, lines.Len())
	for i, want := range []string{"the", "quick brown", "fox", "jumps"} {
		got, err := lines.Line(i)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err = lines.Line(4)
	assert.ErrorIs(t, err, domain.ErrLineOutOfRange)
}

func TestReadLines(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "empty", input: "", want: nil},
		{name: "no trailing newline", input: "a\nb", want: []string{"a", "b"}},
		{name: "crlf", input: "a\r\nb\r\n", want: []string{"a", "b"}},
		{name: "blank lines kept", input: "a\n\nb\n\n", want: []string{"a", "", "b", ""}},
		{name: "inner carriage return kept", input: "a\rb\n", want: []string{"a\rb"}},
		{name: "only newline", input: "\n", want: []string{""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadLines(context.Background(), strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadLinesRejectsInvalidUTF8(t *testing.T) {
	_, err := ReadLines(context.Background(), strings.NewReader("ok\n\xff\xfe\n"))

	assert.ErrorIs(t, err, domain.ErrInvalidLineSource)
	assert.ErrorContains(t, err, "line 2")
}

type brokenReader struct{}

func (brokenReader) Read([]byte) (int, error) {
	return 0, errors.New("device gone")
}

func TestReadLinesPropagatesReadError(t *testing.T) {
	_, err := ReadLines(context.Background(), brokenReader{})

	assert.ErrorContains(t, err, "read line 1: device gone")
}

func TestSourceLoadMissingFile(t *testing.T) {
	_, err := NewSource(filepath.Join(t.TempDir(), "missing.txt")).Load(context.Background())

	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSourceLoadCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSource(writeLineFile(t, "a\n")).Load(ctx)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestSourceDescribeCleansPath(t *testing.T) {
	assert.Equal(t, filepath.Join("data", "lines.txt"), NewSource("data/./lines.txt").Describe())
}
