package backup

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/MrSnakeDoc/goodnews/internal/logger"
	"github.com/MrSnakeDoc/goodnews/internal/transfer"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/require"
)

type fakeExporter struct {
	body string
	err  error
}

func (e fakeExporter) Export(_ context.Context, f transfer.Format, w io.Writer) error {
	if e.err != nil {
		return e.err
	}
	if f != transfer.FormatJSON {
		return errors.New("unexpected format")
	}
	_, err := io.WriteString(w, e.body)
	return err
}

type fakeUploader struct {
	in   *s3.PutObjectInput
	body []byte
	err  error
}

func (u *fakeUploader) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if u.err != nil {
		return nil, u.err
	}
	u.in = in
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	u.body = b
	return &s3.PutObjectOutput{}, nil
}

func fixedNow() time.Time { return time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC) }

func TestRunUploadsExport(t *testing.T) {
	up := &fakeUploader{}
	b := New(Config{Bucket: "backups", Prefix: "/daily/"}, fakeExporter{body: `[{"id":"a"}]`}, up, logger.Nop())
	b.now = fixedNow

	key, err := b.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, "daily/goodnews-20250304T050607Z.json", key)
	require.Equal(t, "backups", aws.ToString(up.in.Bucket))
	require.Equal(t, key, aws.ToString(up.in.Key))
	require.Equal(t, transfer.FormatJSON.ContentType(), aws.ToString(up.in.ContentType))
	require.Equal(t, `[{"id":"a"}]`, string(up.body))
}

func TestRunWithoutPrefix(t *testing.T) {
	b := New(Config{Bucket: "backups"}, fakeExporter{}, &fakeUploader{}, logger.Nop())
	b.now = fixedNow

	key, err := b.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, "goodnews-20250304T050607Z.json", key)
}

func TestRunErrors(t *testing.T) {
	boom := errors.New("boom")

	b := New(Config{Bucket: "b"}, fakeExporter{err: boom}, &fakeUploader{}, logger.Nop())
	_, err := b.Run(context.Background())
	require.ErrorIs(t, err, boom)

	b = New(Config{Bucket: "b"}, fakeExporter{}, &fakeUploader{err: boom}, logger.Nop())
	_, err = b.Run(context.Background())
	require.ErrorIs(t, err, boom)
}

func TestNewS3ClientEndpoint(t *testing.T) {
	orig := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = orig })

	var gotOpts int
	loadDefaultAWSConfig = func(_ context.Context, optFns ...func(*config.LoadOptions) error) (aws.Config, error) {
		gotOpts = len(optFns)
		return aws.Config{Region: "ap-southeast-1"}, nil
	}

	client, err := NewS3Client(context.Background(), Config{
		Region:    "ap-southeast-1",
		Endpoint:  "http://minio:9000",
		AccessKey: "key",
		SecretKey: "secret",
	})
	require.NoError(t, err)
	require.Equal(t, 2, gotOpts)

	opts := client.Options()
	require.Equal(t, "http://minio:9000", aws.ToString(opts.BaseEndpoint))
	require.True(t, opts.UsePathStyle)
}

func TestNewS3ClientConfigError(t *testing.T) {
	orig := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = orig })

	loadDefaultAWSConfig = func(context.Context, ...func(*config.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no config")
	}
	_, err := NewS3Client(context.Background(), Config{})
	require.Error(t, err)
}
