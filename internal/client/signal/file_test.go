package signal

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hablemosverde/verde/internal/common"
)

func receive(t *testing.T, ch <-chan Signal) Signal {
	t.Helper()
	select {
	case s := <-ch:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("no signal received")
		return Signal{}
	}
}

func TestFileBus_SignalCrossesInstances(t *testing.T) {
	dir := t.TempDir()

	a, err := NewFileBus(dir, nil)
	require.NoError(t, err)
	defer a.Close()
	b, err := NewFileBus(dir, nil)
	require.NoError(t, err)
	defer b.Close()

	ch, cancel := b.Subscribe()
	defer cancel()

	sig := Logout("process-a", time.UnixMilli(time.Now().UnixMilli()))
	require.NoError(t, a.Publish(context.Background(), sig))

	got := receive(t, ch)
	assert.Equal(t, sig.Origin, got.Origin)
	assert.Equal(t, KindLogout, got.Kind)
	assert.True(t, sig.At.Equal(got.At))

	data, err := os.ReadFile(filepath.Join(dir, common.KeyLoggedOut))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"origin":"process-a"`)
}

func TestFileBus_IgnoresMalformedMarkerAndOtherFiles(t *testing.T) {
	dir := t.TempDir()

	b, err := NewFileBus(dir, nil)
	require.NoError(t, err)
	defer b.Close()

	ch, cancel := b.Subscribe()
	defer cancel()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated"), []byte(`{"kind":"logout"}`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, common.KeyLoggedOut), []byte("garbage"), 0o600))

	select {
	case s := <-ch:
		t.Fatalf("unexpected signal %+v", s)
	case <-time.After(200 * time.Millisecond):
	}

	// a valid signal afterwards still gets through
	require.NoError(t, b.Publish(context.Background(), Logout("p", time.Now())))
	assert.Equal(t, "p", receive(t, ch).Origin)
}

func TestFileBus_MissingDirFails(t *testing.T) {
	_, err := NewFileBus(filepath.Join(t.TempDir(), "nope"), nil)
	require.Error(t, err)
}

func TestFileBus_PublishAfterClose(t *testing.T) {
	b, err := NewFileBus(t.TempDir(), nil)
	require.NoError(t, err)
	require.NoError(t, b.Close())

	assert.ErrorIs(t, b.Publish(context.Background(), Logout("p", time.Now())), ErrClosed)
}
