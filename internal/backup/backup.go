// Package backup writes export snapshots of the link store to S3.
package backup

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/MrSnakeDoc/goodnews/internal/logger"
	"github.com/MrSnakeDoc/goodnews/internal/metrics"
	"github.com/MrSnakeDoc/goodnews/internal/transfer"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var (
	loadDefaultAWSConfig  = config.LoadDefaultConfig
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// Config holds the S3 target of backups.
type Config struct {
	Bucket    string
	Prefix    string
	Region    string
	Endpoint  string // optional, for MinIO and other S3-compatible stores
	AccessKey string
	SecretKey string
}

// Uploader is the part of the S3 client a backup needs.
type Uploader interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Exporter writes the link store in a transfer format.
type Exporter interface {
	Export(ctx context.Context, f transfer.Format, w io.Writer) error
}

// NewS3Client builds an S3 client from cfg. Static credentials are used when
// set, the default AWS chain otherwise.
func NewS3Client(ctx context.Context, cfg Config) (*s3.Client, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// Backup uploads JSON export snapshots.
type Backup struct {
	cfg      Config
	exporter Exporter
	uploader Uploader
	log      logger.Logger
	now      func() time.Time
}

// New creates a Backup.
func New(cfg Config, exporter Exporter, uploader Uploader, log logger.Logger) *Backup {
	return &Backup{cfg: cfg, exporter: exporter, uploader: uploader, log: log, now: time.Now}
}

// Run exports the store and uploads it, returning the object key.
func (b *Backup) Run(ctx context.Context) (key string, err error) {
	defer func() { metrics.BackupsTotal.WithLabelValues(metrics.Status(err)).Inc() }()

	var buf bytes.Buffer
	if err := b.exporter.Export(ctx, transfer.FormatJSON, &buf); err != nil {
		return "", fmt.Errorf("backup export: %w", err)
	}

	key = b.objectKey()
	_, err = b.uploader.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String(transfer.FormatJSON.ContentType()),
	})
	if err != nil {
		return "", fmt.Errorf("backup upload %s: %w", key, err)
	}

	b.log.Info("backup uploaded",
		logger.String("bucket", b.cfg.Bucket),
		logger.String("key", key),
		logger.Int("bytes", buf.Len()))
	return key, nil
}

func (b *Backup) objectKey() string {
	prefix := strings.Trim(b.cfg.Prefix, "/")
	name := "goodnews-" + b.now().UTC().Format("20060102T150405Z") + ".json"
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}
