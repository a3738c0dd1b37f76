package storage_test

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/UnknownOlympus/athena/internal/config"
	"github.com/UnknownOlympus/athena/internal/models"
	"github.com/UnknownOlympus/athena/internal/storage"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	minioUser     = "athena"
	minioPassword = "athena-secret"
	minioBucket   = "photos"
)

func TestNewMinioStore_IncompleteConfig(t *testing.T) {
	t.Parallel()

	_, err := storage.NewMinioStore(context.Background(), config.StorageConfig{Endpoint: "minio:9000"})

	require.ErrorIs(t, err, storage.ErrIncompleteConfig)
}

func TestMinioStore_Container(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping minio container test in short mode")
	}

	ctx := context.Background()
	const startupTimeout = 60 * time.Second

	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "minio/minio:latest",
			ExposedPorts: []string{"9000/tcp"},
			Env: map[string]string{
				"MINIO_ROOT_USER":     minioUser,
				"MINIO_ROOT_PASSWORD": minioPassword,
			},
			Cmd:        []string{"server", "/data"},
			WaitingFor: wait.ForHTTP("/minio/health/live").WithPort("9000/tcp").WithStartupTimeout(startupTimeout),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctr.Terminate(context.Background()) })

	endpoint, err := ctr.PortEndpoint(ctx, "9000/tcp", "")
	require.NoError(t, err)

	admin, err := minio.New(endpoint, &minio.Options{Creds: credentials.NewStaticV4(minioUser, minioPassword, "")})
	require.NoError(t, err)
	require.NoError(t, admin.MakeBucket(ctx, minioBucket, minio.MakeBucketOptions{}))

	store, err := storage.NewMinioStore(ctx, config.StorageConfig{
		Endpoint:  "http://" + endpoint,
		AccessKey: minioUser,
		SecretKey: minioPassword,
		Bucket:    minioBucket,
	})
	require.NoError(t, err)

	key := storage.ObjectKey("images", time.Now(), "photo.png")
	location, err := store.Upload(ctx, key, &models.Upload{
		Filename: "photo.png", ContentType: "image/png", Data: []byte("not really a png"),
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(location, "http://"+endpoint+"/"+minioBucket+"/images/"))

	obj, err := admin.GetObject(ctx, minioBucket, key, minio.GetObjectOptions{})
	require.NoError(t, err)
	defer obj.Close()
	content, err := io.ReadAll(obj)
	require.NoError(t, err)
	assert.Equal(t, "not really a png", string(content))

	stat, err := admin.StatObject(ctx, minioBucket, key, minio.StatObjectOptions{})
	require.NoError(t, err)
	assert.Equal(t, "image/png", stat.ContentType)

	_, err = storage.NewMinioStore(ctx, config.StorageConfig{
		Endpoint: "http://" + endpoint, AccessKey: minioUser, SecretKey: minioPassword, Bucket: "missing",
	})
	require.ErrorIs(t, err, storage.ErrMissingBucket)
}
