package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLocal(t *testing.T) {
	_, err := NewLocal("")
	assert.Error(t, err)

	_, err = NewLocal(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	f := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(f, []byte("x"), 0o644))
	_, err = NewLocal(f)
	assert.Error(t, err)
}

func TestLocal_PutGet(t *testing.T) {
	ctx := context.Background()
	st, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	info, err := st.Put(ctx, "expedientes.csv", strings.NewReader("a,b\n"), PutObjectOptions{Size: -1})
	require.NoError(t, err)
	assert.Equal(t, int64(4), info.Size)

	_, err = st.Put(ctx, "expedientes.csv", strings.NewReader("c,d,e\n"), PutObjectOptions{Size: -1})
	require.NoError(t, err)

	rc, info, err := st.Get(ctx, "expedientes.csv")
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "c,d,e\n", string(data))
	assert.Equal(t, int64(6), info.Size)
}

func TestLocal_NotFound(t *testing.T) {
	ctx := context.Background()
	st, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	_, _, err = st.Get(ctx, "nope.xlsx")
	assert.ErrorIs(t, err, ErrObjectNotFound)

	_, err = st.Stat(ctx, "nope.xlsx")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestLocal_Append(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	st, err := NewLocal(dir)
	require.NoError(t, err)

	require.NoError(t, st.Append(ctx, "log.csv", []byte("h\n")))
	require.NoError(t, st.Append(ctx, "log.csv", []byte("r1\n")))

	data, err := os.ReadFile(filepath.Join(dir, "log.csv"))
	require.NoError(t, err)
	assert.Equal(t, "h\nr1\n", string(data))
}

func TestLocal_CanceledContext(t *testing.T) {
	st, err := NewLocal(t.TempDir())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = st.Stat(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}
