package s3

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"dabwish/internal/adapters/config"
	"dabwish/pkg/errors"
	"dabwish/pkg/logger"
)

// MaxPhotoSize is the upload limit for wish photos
const MaxPhotoSize = 10 * 1024 * 1024

var allowedContentTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
}

// Photo is an uploaded image as received from the client
type Photo struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ValidatePhoto checks size and content type
func ValidatePhoto(p Photo) error {
	if p.Size > MaxPhotoSize {
		return errors.Wrapf(errors.ErrFileTooLarge, "%s exceeds %s",
			humanize.IBytes(uint64(p.Size)), humanize.IBytes(MaxPhotoSize))
	}
	if _, ok := allowedContentTypes[p.ContentType]; !ok {
		return errors.Wrapf(errors.ErrInvalidFileFormat, "content type %q", p.ContentType)
	}
	return nil
}

// PhotoStore keeps wish photos in an S3 compatible bucket (MinIO in development)
type PhotoStore struct {
	client  *s3.Client
	bucket  string
	prefix  string
	baseURL string
	log     *logger.Logger
}

// NewClient creates an S3 client. A configured endpoint switches to
// path-style addressing, which MinIO requires.
func NewClient(ctx context.Context, cfg config.S3Config) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "load aws config")
	}

	var clientOpts []func(*s3.Options)
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}
	return s3.NewFromConfig(awsCfg, clientOpts...), nil
}

// NewPhotoStore creates a photo store. URLs are built from PublicURL when set,
// otherwise from the endpoint.
func NewPhotoStore(client *s3.Client, cfg config.S3Config) *PhotoStore {
	base := cfg.PublicURL
	if base == "" {
		base = cfg.Endpoint
	}
	return &PhotoStore{
		client:  client,
		bucket:  cfg.Bucket,
		prefix:  cfg.ObjectPrefix,
		baseURL: strings.TrimSuffix(base, "/"),
		log:     logger.Get().With("component", "photo_store", "bucket", cfg.Bucket),
	}
}

// Upload validates and stores the photo, returning its URL
func (s *PhotoStore) Upload(ctx context.Context, p Photo) (string, error) {
	if err := ValidatePhoto(p); err != nil {
		return "", err
	}

	object := ObjectName(s.prefix, p.Filename)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(object),
		Body:          p.Body,
		ContentLength: aws.Int64(p.Size),
		ContentType:   aws.String(p.ContentType),
	})
	if err != nil {
		return "", errors.Wrapf(err, "put object %s", object)
	}

	s.log.Infow("Uploaded photo", "object", object, "size", humanize.IBytes(uint64(p.Size)))
	return s.URL(object), nil
}

// Delete removes the object behind url. Failures are logged, never returned,
// because deletion only ever runs as cleanup.
func (s *PhotoStore) Delete(ctx context.Context, url string) {
	object, ok := ObjectNameFromURL(url, s.bucket)
	if !ok {
		s.log.Warnw("Photo URL does not point into bucket", "url", url)
		return
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(object),
	})
	if err != nil {
		s.log.Warnw("Failed to delete photo", "object", object, "error", err)
		return
	}
	s.log.Infow("Deleted photo", "object", object)
}

// URL returns the public URL of an object
func (s *PhotoStore) URL(object string) string {
	return fmt.Sprintf("%s/%s/%s", s.baseURL, s.bucket, object)
}

// ObjectName builds a unique key keeping a short extension of the original name
func ObjectName(prefix, filename string) string {
	ext := strings.TrimPrefix(path.Ext(filename), ".")
	if ext == "" || len(ext) > 5 {
		ext = "bin"
	}
	return prefix + uuid.NewString() + "." + strings.ToLower(ext)
}

// ObjectNameFromURL extracts the object key following "{bucket}/" in url
func ObjectNameFromURL(url, bucket string) (string, bool) {
	if url == "" {
		return "", false
	}
	marker := bucket + "/"
	i := strings.Index(url, marker)
	if i < 0 {
		return "", false
	}
	object := url[i+len(marker):]
	return object, object != ""
}
