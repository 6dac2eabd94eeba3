package repositories

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// R2Store keeps blobs in a Cloudflare R2 (S3 compatible) bucket under
// <prefix>/<bucket>/<name>. Uploads are still staged on local disk.
type R2Store struct {
	client  *s3.Client
	bucket  string
	prefix  string
	tempDir string
}

type R2Options struct {
	AccessKeyID     string
	SecretAccessKey string
	AccountID       string
	BucketName      string
	Region          string
	Prefix          string
	// Endpoint overrides the account endpoint, e.g. for MinIO in tests.
	Endpoint string
	TempDir  string
}

// NewR2Store initializes the R2 client using static credentials and custom endpoint.
func NewR2Store(opts R2Options) (*R2Store, error) {
	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://%s.r2.cloudflarestorage.com", opts.AccountID)
	}
	if err := os.MkdirAll(opts.TempDir, 0755); err != nil {
		return nil, fmt.Errorf("create temp directory: %w", err)
	}

	cfg := aws.Config{
		Credentials: credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		Region:      opts.Region,
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return &R2Store{
		client:  client,
		bucket:  opts.BucketName,
		prefix:  strings.Trim(opts.Prefix, "/"),
		tempDir: opts.TempDir,
	}, nil
}

func (s *R2Store) key(bucket Bucket, name string) string {
	return path.Join(s.prefix, string(bucket), name)
}

func (s *R2Store) TempDir() string {
	return s.tempDir
}

// Exists checks if a given object key exists in the R2 bucket.
func (s *R2Store) Exists(ctx context.Context, bucket Bucket, name string) (bool, error) {
	if err := CheckName(name); err != nil {
		return false, err
	}
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(bucket, name)),
	})
	if err != nil {
		var nsk *s3types.NotFound
		if ok := errors.As(err, &nsk); ok {
			return false, nil
		}
		// Other error (e.g. auth, network)
		return false, err
	}
	return true, nil
}

// Commit uploads the staged file with If-None-Match: * so an existing object
// is never replaced, then removes the staged copy.
func (s *R2Store) Commit(ctx context.Context, bucket Bucket, name, srcPath string) error {
	if err := CheckName(name); err != nil {
		return err
	}
	f, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.key(bucket, name)),
		Body:          f,
		ContentLength: aws.Int64(info.Size()),
		IfNoneMatch:   aws.String("*"),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "PreconditionFailed" {
			return ErrBlobExists
		}
		return fmt.Errorf("put %s: %w", name, err)
	}

	f.Close()
	return os.Remove(srcPath)
}

func (s *R2Store) Open(ctx context.Context, bucket Bucket, name string) (io.ReadCloser, error) {
	if err := CheckName(name); err != nil {
		return nil, err
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(bucket, name)),
	})
	if err != nil {
		var nsk *s3types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, ErrBlobNotFound
		}
		return nil, err
	}
	return out.Body, nil
}

func (s *R2Store) List(ctx context.Context, bucket Bucket) ([]string, error) {
	prefix := s.key(bucket, "") + "/"
	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(s.bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	})

	var names []string
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", bucket, err)
		}
		for _, obj := range page.Contents {
			name := strings.TrimPrefix(aws.ToString(obj.Key), prefix)
			if name != "" {
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names, nil
}

func (s *R2Store) Remove(ctx context.Context, bucket Bucket, name string) error {
	if err := CheckName(name); err != nil {
		return err
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(bucket, name)),
	})
	return err
}

// PresignGet creates a presigned URL for downloading a blob from R2.
func (s *R2Store) PresignGet(ctx context.Context, bucket Bucket, name string, expires time.Duration) (string, error) {
	presigner := s3.NewPresignClient(s.client)
	req, err := presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(bucket, name)),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}
