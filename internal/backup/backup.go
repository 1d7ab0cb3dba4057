// Package backup uploads export snapshots to S3-compatible object storage and
// fetches them back for import.
package backup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dukerupert/tally/internal/model"
)

// ErrNotConfigured is returned when bucket or credentials are missing.
var ErrNotConfigured = errors.New("backup not configured: S3 bucket and credentials required")

// ErrPassphraseRequired is returned when downloading an encrypted snapshot
// without a passphrase.
var ErrPassphraseRequired = errors.New("snapshot is encrypted: passphrase required")

const encryptedExt = ".enc"

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Config holds S3-compatible storage configuration.
type S3Config struct {
	Endpoint   string
	Bucket     string
	Region     string
	AccessKey  string
	SecretKey  string
	Prefix     string
	Passphrase string // optional; snapshots are encrypted when set
}

// Enabled reports whether uploads can be attempted.
func (c S3Config) Enabled() bool {
	return c.Bucket != "" && c.AccessKey != "" && c.SecretKey != ""
}

// Uploader stores export snapshots in a bucket.
type Uploader struct {
	cfg    S3Config
	client s3Client
	logger *slog.Logger
	now    func() time.Time
}

// NewUploader returns an Uploader, or ErrNotConfigured.
func NewUploader(cfg S3Config, logger *slog.Logger) (*Uploader, error) {
	if !cfg.Enabled() {
		return nil, ErrNotConfigured
	}
	return newUploader(cfg, newS3Client(cfg), logger), nil
}

func newUploader(cfg S3Config, client s3Client, logger *slog.Logger) *Uploader {
	return &Uploader{cfg: cfg, client: client, logger: logger, now: time.Now}
}

func newS3Client(cfg S3Config) *s3.Client {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	opts := s3.Options{
		Region:       region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// Key returns the object key for a snapshot taken at t.
func (u *Uploader) Key(t time.Time) string {
	name := fmt.Sprintf("tally-export-%s.json", t.UTC().Format("2006-01-02T150405Z"))
	if u.cfg.Passphrase != "" {
		name += encryptedExt
	}
	return path.Join(u.cfg.Prefix, name)
}

// Upload stores one export snapshot and describes where it went.
func (u *Uploader) Upload(ctx context.Context, snapshot []byte) (model.Backup, error) {
	uploadedAt := u.now().UTC()
	key := u.Key(uploadedAt)

	body := snapshot
	contentType := "application/json"
	if u.cfg.Passphrase != "" {
		sealed, err := Seal(snapshot, u.cfg.Passphrase)
		if err != nil {
			return model.Backup{}, fmt.Errorf("encrypt snapshot: %w", err)
		}
		body = sealed
		contentType = "application/octet-stream"
	}

	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.cfg.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return model.Backup{}, fmt.Errorf("upload to s3: %w", err)
	}

	u.logger.Info("snapshot uploaded", "bucket", u.cfg.Bucket, "key", key, "bytes", len(body))
	return model.Backup{
		Bucket:     u.cfg.Bucket,
		Key:        key,
		SizeBytes:  int64(len(body)),
		UploadedAt: uploadedAt,
	}, nil
}

// Download fetches a snapshot by key, decrypting it when needed.
func (u *Uploader) Download(ctx context.Context, key string) ([]byte, error) {
	out, err := u.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(u.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("download from s3: %w", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	if !strings.HasSuffix(key, encryptedExt) {
		return data, nil
	}
	if u.cfg.Passphrase == "" {
		return nil, ErrPassphraseRequired
	}
	return Open(data, u.cfg.Passphrase)
}
