package oitview

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsShaderEvent(t *testing.T) {
	assert.True(t, isShaderEvent(fsnotify.Event{Name: "/res/screen/shader.frag", Op: fsnotify.Write}))
	assert.True(t, isShaderEvent(fsnotify.Event{Name: "/res/screen/shader.vert", Op: fsnotify.Create}))
	assert.False(t, isShaderEvent(fsnotify.Event{Name: "/res/screen/shader.frag", Op: fsnotify.Chmod}))
	assert.False(t, isShaderEvent(fsnotify.Event{Name: "/res/screen/.shader.frag.swp", Op: fsnotify.Write}))
}

func TestShaderWatcher_SignalsOnWrite(t *testing.T) {
	dir := t.TempDir()
	frag := filepath.Join(dir, FragmentShaderFile)
	require.NoError(t, os.WriteFile(frag, []byte("v1"), 0o644))

	sw, err := NewShaderWatcher(NewNopLogger(), dir)
	require.NoError(t, err)
	defer sw.Close()

	require.NoError(t, os.WriteFile(frag, []byte("v2"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	select {
	case <-sw.Changed():
	case <-time.After(5 * time.Second):
		t.Fatal("no change signal after writing a shader")
	}
}

func TestNewShaderWatcher_MissingDir(t *testing.T) {
	_, err := NewShaderWatcher(NewNopLogger(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
