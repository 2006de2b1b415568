// Package storage mirrors exported files to an S3-compatible bucket.
package storage

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/doeshing/gpa/internal/domain"
	"github.com/doeshing/gpa/internal/ports"
)

// MinioUploader uploads files with the MinIO client.
type MinioUploader struct {
	client *minio.Client
	bucket string
	prefix string
	region string

	mu    sync.Mutex
	ready bool
}

// NewMinioUploader builds an uploader. No network traffic happens until the
// first Upload or Check.
func NewMinioUploader(settings domain.StorageSettings, accessKey, secretKey string) (*MinioUploader, error) {
	if settings.Endpoint == "" || settings.Bucket == "" {
		return nil, domain.ConfigError("storage", fmt.Errorf("endpoint and bucket are required"))
	}
	if accessKey == "" || secretKey == "" {
		return nil, domain.ConfigError("storage", fmt.Errorf("missing credentials: set %s and %s", settings.AccessKeyEnv, settings.SecretKeyEnv))
	}
	cli, err := minio.New(settings.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: settings.UseSSL,
		Region: settings.Region,
	})
	if err != nil {
		return nil, domain.ConfigError("storage", err)
	}
	return &MinioUploader{
		client: cli,
		bucket: settings.Bucket,
		prefix: strings.Trim(settings.Prefix, "/"),
		region: settings.Region,
	}, nil
}

// Enabled reports true; see Disabled for the off switch.
func (u *MinioUploader) Enabled() bool {
	return true
}

// Check verifies the endpoint answers and the bucket exists or can be made.
func (u *MinioUploader) Check(ctx context.Context) error {
	return u.ensureBucket(ctx)
}

// Upload puts every file under bucket/prefix/basename and returns object URLs.
// It stops at the first failure, returning what was uploaded so far.
func (u *MinioUploader) Upload(ctx context.Context, paths []string) ([]string, error) {
	if err := u.ensureBucket(ctx); err != nil {
		return nil, err
	}
	var urls []string
	for _, p := range paths {
		key := ObjectKey(u.prefix, p)
		_, err := u.client.FPutObject(ctx, u.bucket, key, p, minio.PutObjectOptions{
			ContentType: ContentType(p),
		})
		if err != nil {
			return urls, domain.IOError("upload", p, err)
		}
		urls = append(urls, u.objectURL(key))
	}
	return urls, nil
}

// ensureBucket creates the bucket when missing. Only success is remembered,
// so a transient failure is retried on the next call.
func (u *MinioUploader) ensureBucket(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.ready {
		return nil
	}
	exists, err := u.client.BucketExists(ctx, u.bucket)
	if err != nil {
		return domain.IOError("check bucket", u.bucket, err)
	}
	if !exists {
		if err := u.client.MakeBucket(ctx, u.bucket, minio.MakeBucketOptions{Region: u.region}); err != nil {
			return domain.IOError("create bucket", u.bucket, err)
		}
	}
	u.ready = true
	return nil
}

func (u *MinioUploader) objectURL(key string) string {
	endpoint := u.client.EndpointURL()
	out := url.URL{Scheme: endpoint.Scheme, Host: endpoint.Host, Path: "/" + u.bucket + "/" + key}
	return out.String()
}

// ObjectKey joins prefix and the file's base name with forward slashes.
func ObjectKey(prefix, localPath string) string {
	base := filepath.Base(localPath)
	if prefix == "" {
		return base
	}
	return path.Join(prefix, base)
}

// ContentType guesses a MIME type from the export extension.
func ContentType(localPath string) string {
	switch strings.ToLower(filepath.Ext(localPath)) {
	case ".csv":
		return "text/csv"
	case ".json":
		return "application/json"
	case ".jsonl":
		return "application/x-ndjson"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}

// Disabled is the uploader used when storage.enabled is false.
type Disabled struct{}

func (Disabled) Enabled() bool {
	return false
}

func (Disabled) Check(context.Context) error {
	return nil
}

func (Disabled) Upload(context.Context, []string) ([]string, error) {
	return nil, nil
}

var (
	_ ports.ArtifactUploader = (*MinioUploader)(nil)
	_ ports.ArtifactUploader = Disabled{}
)
