//go:build integration

package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbia-ai/orbia/internal/testutil"
)

func newTestClient(ctx context.Context, t *testing.T) *S3Client {
	t.Helper()
	rc := testutil.NewRustFSContainer(ctx, t)
	t.Cleanup(func() { _ = rc.Terminate(ctx) })

	client, err := NewS3Client(ctx, S3ClientConfig{
		Endpoint:        rc.Endpoint(),
		Region:          "us-east-1",
		AccessKeyID:     "rustfsadmin",
		SecretAccessKey: "rustfsadmin",
		Bucket:          "orbia-snapshots",
		UsePathStyle:    true,
	})
	require.NoError(t, err)
	require.NoError(t, client.EnsureBucket(ctx))
	return client
}

func TestS3Client_SnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(ctx, t)

	srcDir := t.TempDir()
	vectorsPath := filepath.Join(srcDir, "vectors.gob")
	metadataPath := filepath.Join(srcDir, "metadata.gob")
	require.NoError(t, os.WriteFile(vectorsPath, []byte("vector payload"), 0o644))
	require.NoError(t, os.WriteFile(metadataPath, []byte("metadata payload"), 0o644))

	require.NoError(t, client.UploadSnapshot(ctx, vectorsPath, metadataPath))

	destDir := t.TempDir()
	require.NoError(t, client.RestoreLatest(ctx, destDir, "vectors.gob", "metadata.gob"))

	restored, err := os.ReadFile(filepath.Join(destDir, "vectors.gob"))
	require.NoError(t, err)
	assert.Equal(t, "vector payload", string(restored))

	restored, err = os.ReadFile(filepath.Join(destDir, "metadata.gob"))
	require.NoError(t, err)
	assert.Equal(t, "metadata payload", string(restored))
}

func TestS3Client_LatestReflectsNewestUpload(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(ctx, t)

	srcDir := t.TempDir()
	vectorsPath := filepath.Join(srcDir, "vectors.gob")
	metadataPath := filepath.Join(srcDir, "metadata.gob")

	require.NoError(t, os.WriteFile(vectorsPath, []byte("v1"), 0o644))
	require.NoError(t, os.WriteFile(metadataPath, []byte("m1"), 0o644))
	require.NoError(t, client.UploadSnapshot(ctx, vectorsPath, metadataPath))

	require.NoError(t, os.WriteFile(vectorsPath, []byte("v2"), 0o644))
	require.NoError(t, os.WriteFile(metadataPath, []byte("m2"), 0o644))
	require.NoError(t, client.UploadSnapshot(ctx, vectorsPath, metadataPath))

	destDir := t.TempDir()
	require.NoError(t, client.RestoreLatest(ctx, destDir, "vectors.gob"))
	restored, err := os.ReadFile(filepath.Join(destDir, "vectors.gob"))
	require.NoError(t, err)
	assert.Equal(t, "v2", string(restored))
}

func TestS3Client_RestoreLatestMissing(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(ctx, t)

	err := client.RestoreLatest(ctx, t.TempDir(), "vectors.gob")
	assert.Error(t, err)
}
