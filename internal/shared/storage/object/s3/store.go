package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"gdpr-backend/internal/shared/storage/object"
)

// RetentionTag marks published archives so a bucket lifecycle rule can
// expire them.
const RetentionTag = "purpose=gdpr-export"

// API is the subset of the S3 client the store uses.
type API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Store publishes export archives to a bucket with server-side encryption,
// using the KMS key when one is configured.
type Store struct {
	Client   API
	Bucket   string
	Prefix   string
	KMSKeyID string
}

// New loads the default AWS config for region and returns a Store on bucket.
func New(ctx context.Context, region, bucket, prefix, kmsKeyID string) (*Store, error) {
	if strings.TrimSpace(bucket) == "" {
		return nil, errors.New("s3 bucket is required")
	}
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &Store{
		Client:   s3.NewFromConfig(cfg),
		Bucket:   bucket,
		Prefix:   prefix,
		KMSKeyID: strings.TrimSpace(kmsKeyID),
	}, nil
}

// SaveWithKey uploads r under storageKey and returns the bytes sent.
func (s *Store) SaveWithKey(ctx context.Context, storageKey, contentType string, r io.Reader) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	key := s.objectKey(storageKey)
	body := &countingReader{r: r}
	in := &s3.PutObjectInput{
		Bucket:               aws.String(s.Bucket),
		Key:                  aws.String(key),
		Body:                 body,
		ContentType:          aws.String(contentType),
		ContentDisposition:   aws.String(mime.FormatMediaType("attachment", map[string]string{"filename": path.Base(key)})),
		Tagging:              aws.String(RetentionTag),
		ServerSideEncryption: s3types.ServerSideEncryptionAes256,
	}
	if s.KMSKeyID != "" {
		in.ServerSideEncryption = s3types.ServerSideEncryptionAwsKms
		in.SSEKMSKeyId = aws.String(s.KMSKeyID)
	}
	if _, err := s.Client.PutObject(ctx, in); err != nil {
		return 0, fmt.Errorf("s3 put %s/%s: %w", s.Bucket, key, err)
	}
	return body.n, nil
}

// Open streams the object stored under storageKey.
func (s *Store) Open(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := s.objectKey(storageKey)
	out, err := s.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var missing *s3types.NoSuchKey
		if errors.As(err, &missing) {
			return nil, fmt.Errorf("s3 get %s/%s: %w", s.Bucket, key, object.ErrNotFound)
		}
		return nil, fmt.Errorf("s3 get %s/%s: %w", s.Bucket, key, err)
	}
	return out.Body, nil
}

// objectKey joins the configured prefix and key without duplicate or
// surrounding slashes.
func (s *Store) objectKey(storageKey string) string {
	var parts []string
	for _, p := range []string{s.Prefix, storageKey} {
		if p = strings.Trim(strings.TrimSpace(p), "/"); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "/")
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

var _ object.ObjectStore = (*Store)(nil)
