package report

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilePersistence_SaveAndLoad(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()
	p := NewFilePersistence(dir)

	loaded, err := p.Load(ctx, "ecom_lakehouse")
	require.NoError(t, err)
	assert.Nil(t, loaded, "first run has no report")

	r := sampleReport()
	require.NoError(t, p.Save(ctx, r))

	_, err = os.Stat(filepath.Join(dir, "ecom_lakehouse", FileName))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "ecom_lakehouse", FileName+".tmp"))
	assert.True(t, os.IsNotExist(err), "temporary file is renamed away")

	loaded, err = p.Load(ctx, "ecom_lakehouse")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, r.RunID, loaded.RunID)
	assert.Equal(t, r.Counts(), loaded.Counts())
	assert.Nil(t, loaded.Entries[2].Err)
	assert.Equal(t, "boom", loaded.Entries[2].Detail)
}

func TestFilePersistence_Errors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()
	p := NewFilePersistence(dir)

	assert.Error(t, p.Save(ctx, &Report{}))

	_, err := p.Load(ctx, "../escape")
	assert.Error(t, err)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "broken"), 0750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken", FileName), []byte("{not json"), 0600))
	_, err = p.Load(ctx, "broken")
	assert.ErrorContains(t, err, "failed to unmarshal")
}

func TestFilePersistence_SaveHonoursLock(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	p := NewFilePersistence(dir)
	r := sampleReport()

	require.NoError(t, os.MkdirAll(filepath.Join(dir, r.Catalog), 0750))
	held := flock.New(filepath.Join(dir, r.Catalog, lockFileName))
	require.NoError(t, held.Lock())

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	err := p.Save(ctx, r)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, held.Unlock())
	require.NoError(t, p.Save(context.Background(), r))
}
