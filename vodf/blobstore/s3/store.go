// Package s3 implements blobstore.Store on an S3-compatible bucket (AWS S3, MinIO).
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"slices"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vodfgo/vodf/vodf/blobstore"
)

const defaultRegion = "us-east-1"

// Environment variables read by OpenFromEnv.
const (
	EnvBucket    = "VODF_BLOB_S3_BUCKET"
	EnvRegion    = "VODF_BLOB_S3_REGION"
	EnvEndpoint  = "VODF_BLOB_S3_ENDPOINT"
	EnvPathStyle = "VODF_BLOB_S3_PATH_STYLE"
	EnvPrefix    = "VODF_BLOB_S3_PREFIX"
)

// ErrBucketRequired is returned when no bucket is configured.
var ErrBucketRequired = errors.New("s3 bucket required")

// Config holds explicit construction parameters. Empty credentials fall back to the default
// AWS credential chain.
type Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	Prefix          string
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	PathStyle       bool
}

// Store maps keys to objects of one bucket, optionally below a key prefix.
type Store struct {
	client *s3.Client
	bucket string
	prefix string
}

// New creates a Store from cfg.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, ErrBucketRequired
	}

	region := cfg.Region
	if region == "" {
		region = defaultRegion
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return NewWithClient(client, cfg.Bucket, cfg.Prefix)
}

// NewWithClient wraps an existing client.
func NewWithClient(client *s3.Client, bucket, prefix string) (*Store, error) {
	if bucket == "" {
		return nil, ErrBucketRequired
	}

	return &Store{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}, nil
}

// OpenFromEnv builds a Store from the VODF_BLOB_S3_* environment variables.
func OpenFromEnv(ctx context.Context) (*Store, error) {
	return New(ctx, Config{
		Bucket:    os.Getenv(EnvBucket),
		Region:    os.Getenv(EnvRegion),
		Endpoint:  os.Getenv(EnvEndpoint),
		Prefix:    os.Getenv(EnvPrefix),
		PathStyle: strings.EqualFold(os.Getenv(EnvPathStyle), "true"),
	})
}

func (s *Store) Driver() blobstore.Driver { return blobstore.DriverS3 }

func (s *Store) objectKey(key string) (string, error) {
	clean, err := blobstore.CleanKey(key)
	if err != nil {
		return "", err
	}

	if s.prefix == "" {
		return clean, nil
	}

	return s.prefix + "/" + clean, nil
}

func (s *Store) storeKey(objectKey string) string {
	if s.prefix == "" {
		return objectKey
	}

	return strings.TrimPrefix(objectKey, s.prefix+"/")
}

// Put uploads a new object. Create-only semantics are emulated with a HEAD request first.
func (s *Store) Put(ctx context.Context, key string, r io.Reader) (blobstore.Info, error) {
	objectKey, err := s.objectKey(key)
	if err != nil {
		return blobstore.Info{}, err
	}

	if _, err = s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: &s.bucket, Key: &objectKey}); err == nil {
		return blobstore.Info{}, fmt.Errorf("%w: %s", blobstore.ErrAlreadyExists, key)
	} else if !isNotFound(err) {
		return blobstore.Info{}, err
	}

	if _, err = s.client.PutObject(ctx, &s3.PutObjectInput{Bucket: &s.bucket, Key: &objectKey, Body: r}); err != nil {
		return blobstore.Info{}, err
	}

	return s.Head(ctx, key)
}

func (s *Store) Get(ctx context.Context, key string) (blobstore.Info, io.ReadCloser, error) {
	objectKey, err := s.objectKey(key)
	if err != nil {
		return blobstore.Info{}, nil, err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &s.bucket, Key: &objectKey})
	if err != nil {
		return blobstore.Info{}, nil, s.mapError(key, err)
	}

	info := blobstore.Info{
		Key:          s.storeKey(objectKey),
		Size:         aws.ToInt64(out.ContentLength),
		ETag:         strings.Trim(aws.ToString(out.ETag), `"`),
		LastModified: aws.ToTime(out.LastModified),
	}

	return info, out.Body, nil
}

func (s *Store) Head(ctx context.Context, key string) (blobstore.Info, error) {
	objectKey, err := s.objectKey(key)
	if err != nil {
		return blobstore.Info{}, err
	}

	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: &s.bucket, Key: &objectKey})
	if err != nil {
		return blobstore.Info{}, s.mapError(key, err)
	}

	return blobstore.Info{
		Key:          s.storeKey(objectKey),
		Size:         aws.ToInt64(out.ContentLength),
		ETag:         strings.Trim(aws.ToString(out.ETag), `"`),
		LastModified: aws.ToTime(out.LastModified),
	}, nil
}

// Delete removes the object and reports whether it existed before.
func (s *Store) Delete(ctx context.Context, key string) (bool, error) {
	if _, err := s.Head(ctx, key); err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return false, nil
		}

		return false, err
	}

	objectKey, err := s.objectKey(key)
	if err != nil {
		return false, err
	}

	if _, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: &s.bucket, Key: &objectKey}); err != nil {
		return false, err
	}

	return true, nil
}

// List pages through ListObjectsV2 and returns the objects under prefix sorted by key.
func (s *Store) List(ctx context.Context, prefix string) ([]blobstore.Info, error) {
	fullPrefix := prefix
	if s.prefix != "" {
		fullPrefix = s.prefix + "/" + prefix
	}

	infos := make([]blobstore.Info, 0)
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{Bucket: &s.bucket, Prefix: &fullPrefix})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}

		for _, obj := range page.Contents {
			infos = append(infos, blobstore.Info{
				Key:          s.storeKey(aws.ToString(obj.Key)),
				Size:         aws.ToInt64(obj.Size),
				ETag:         strings.Trim(aws.ToString(obj.ETag), `"`),
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
	}

	slices.SortFunc(infos, func(a, b blobstore.Info) int { return strings.Compare(a.Key, b.Key) })

	return infos, nil
}

func (s *Store) mapError(key string, err error) error {
	if isNotFound(err) {
		return errors.Join(fmt.Errorf("%w: %s", blobstore.ErrNotFound, key), err)
	}

	return err
}

func isNotFound(err error) bool {
	var responseErr *awshttp.ResponseError

	return errors.As(err, &responseErr) && responseErr.HTTPStatusCode() == http.StatusNotFound
}

var _ blobstore.Store = (*Store)(nil)
