package report

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/klauspost/compress/zstd"
)

// S3Options configures the S3 sink.
type S3Options struct {
	// URI is s3://bucket[/prefix]; empty disables the upload.
	URI string
	// Endpoint overrides the S3 endpoint, e.g. for MinIO.
	Endpoint string
	// PathStyle enables path-style addressing (required for MinIO).
	PathStyle bool
	// Compress uploads text files zstd-compressed with a ".zst" suffix.
	Compress bool
}

// ParseS3URI splits s3://bucket/prefix into bucket and prefix. The prefix
// has no leading or trailing slash.
func ParseS3URI(uri string) (bucket, prefix string, err error) {
	rest, ok := strings.CutPrefix(uri, "s3://")
	if !ok {
		return "", "", fmt.Errorf("s3 uri %q: missing s3:// scheme", uri)
	}
	bucket, prefix, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("s3 uri %q: missing bucket", uri)
	}
	return bucket, strings.Trim(prefix, "/"), nil
}

type putObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Uploader copies result files under s3://bucket/prefix/<run-id>/.
type S3Uploader struct {
	client   putObjectAPI
	bucket   string
	prefix   string
	compress bool
}

// NewS3Uploader creates an uploader using the default AWS configuration chain.
func NewS3Uploader(ctx context.Context, opts S3Options) (*S3Uploader, error) {
	bucket, prefix, err := ParseS3URI(opts.URI)
	if err != nil {
		return nil, err
	}

	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.PathStyle
	})
	return &S3Uploader{client: client, bucket: bucket, prefix: prefix, compress: opts.Compress}, nil
}

// Bucket returns the destination bucket.
func (u *S3Uploader) Bucket() string {
	return u.bucket
}

// Key returns the object key for a local file.
func (u *S3Uploader) Key(runID, file string) string {
	key := path.Join(u.prefix, runID, filepath.Base(file))
	if u.compresses(file) {
		key += ".zst"
	}
	return key
}

// compresses reports whether file is uploaded zstd-compressed. Parquet
// pages are already compressed.
func (u *S3Uploader) compresses(file string) bool {
	return u.compress && filepath.Ext(file) != ".parquet"
}

// Upload puts every file and returns the object keys written.
func (u *S3Uploader) Upload(ctx context.Context, runID string, files []string) ([]string, error) {
	keys := make([]string, 0, len(files))
	for _, f := range files {
		key := u.Key(runID, f)
		if err := u.put(ctx, f, key); err != nil {
			return keys, fmt.Errorf("put s3://%s/%s: %w", u.bucket, key, err)
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func (u *S3Uploader) put(ctx context.Context, file, key string) error {
	if u.compresses(file) {
		body, err := compressFile(file)
		if err != nil {
			return err
		}
		_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(u.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(body),
			ContentType: aws.String("application/zstd"),
		})
		return err
	}

	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	in := &s3.PutObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
		Body:   f,
	}
	if ct := contentType(file); ct != "" {
		in.ContentType = aws.String(ct)
	}
	_, err = u.client.PutObject(ctx, in)
	return err
}

// compressFile returns the zstd frame of file's contents. Result files are
// small enough to compress in memory.
func compressFile(file string) ([]byte, error) {
	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	defer enc.Close()
	return enc.EncodeAll(raw, nil), nil
}

func contentType(file string) string {
	switch ext := filepath.Ext(file); ext {
	case ".csv":
		return "text/csv"
	case ".log", ".prom":
		return "text/plain; charset=utf-8"
	case ".parquet":
		return "application/vnd.apache.parquet"
	default:
		return mime.TypeByExtension(ext)
	}
}
