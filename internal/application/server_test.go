package application

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	filesource "github.com/bnema/lineserver/internal/adapters/source/file"
	"github.com/bnema/lineserver/internal/domain"
	"github.com/bnema/lineserver/internal/ports/mocks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func mockAnyContext() interface{} {
	return mock.MatchedBy(func(context.Context) bool { return true })
}

func TestServerStartLoadFailureAbortsStartup(t *testing.T) {
	loadErr := errors.New("permission denied")
	source := mocks.NewMockLineSource(t)
	source.EXPECT().Load(mockAnyContext()).Return(nil, loadErr)
	source.EXPECT().Describe().Return("lines.txt")

	server := NewServer(source, ServerConfig{Addr: "127.0.0.1:0"}, discardLogger())

	_, err := server.Start(context.Background())
	require.ErrorIs(t, err, loadErr)
	assert.ErrorContains(t, err, "load lines from lines.txt")
}

func TestServerStartBindFailureAbortsStartup(t *testing.T) {
	occupied, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer occupied.Close()

	source := mocks.NewMockLineSource(t)
	source.EXPECT().Load(mockAnyContext()).Return(domain.NewLines(exampleLines), nil)
	source.EXPECT().Describe().Return("lines.txt")

	server := NewServer(source, ServerConfig{Addr: occupied.Addr().String()}, discardLogger())

	_, err = server.Start(context.Background())
	assert.ErrorContains(t, err, "listen on")
}

func TestServerRequiresSource(t *testing.T) {
	server := NewServer(nil, ServerConfig{}, nil)

	err := server.Serve(context.Background())
	assert.ErrorIs(t, err, ErrNoLineSource)
}

func TestServerServeUntilShutdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lines.txt")
	require.NoError(t, os.WriteFile(path, []byte("the\r\nquick brown\n\nfox\njumps"), 0o644))
	want := []string{"the", "quick brown", "", "fox", "jumps"}

	server := NewServer(filesource.NewSource(path), ServerConfig{Addr: "127.0.0.1:0"}, discardLogger())
	coordinator, err := server.Start(context.Background())
	require.NoError(t, err)

	result := make(chan error, 1)
	go func() {
		result <- coordinator.Run(context.Background())
	}()

	client := dial(t, coordinator.Addr().String())
	for i, line := range want {
		got, err := client.get(i)
		require.NoError(t, err)
		assert.Equal(t, "Ok\r\n"+line+"\r\n", got, "line %d", i)
	}

	got, err := client.get(len(want))
	require.NoError(t, err)
	assert.Equal(t, "Err - failed to retrieve line 5. There are only 5 lines available.\r\n", got)

	require.NoError(t, client.send("SHUTDOWN"))
	client.waitClosed(t)

	select {
	case err := <-result:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after SHUTDOWN")
	}
}

func TestServerServeWithMockSource(t *testing.T) {
	source := mocks.NewMockLineSource(t)
	source.EXPECT().Load(mockAnyContext()).Return(domain.NewLines(exampleLines), nil)
	source.EXPECT().Describe().Return("lines.txt")

	server := NewServer(source, ServerConfig{Addr: "127.0.0.1:0"}, discardLogger())
	ctx, cancel := context.WithCancel(context.Background())

	result := make(chan error, 1)
	go func() {
		result <- server.Serve(ctx)
	}()

	cancel()
	require.NoError(t, <-result)
}

func TestServerIDIsUUID(t *testing.T) {
	server := NewServer(nil, ServerConfig{}, discardLogger())

	parsed, err := uuid.Parse(server.ID())
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}
