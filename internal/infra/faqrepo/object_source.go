package faqrepo

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yanqian/faqbot/internal/domain/faq"
)

const maxSeedBytes = 8 << 20

// ObjectOptions locates a YAML seed in an S3 compatible bucket.
type ObjectOptions struct {
	Endpoint  string
	Bucket    string
	Key       string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
}

// ObjectSource reads the catalog from object storage at every load.
type ObjectSource struct {
	client *minio.Client
	bucket string
	key    string
}

// NewObjectSource constructs a minio client for the bucket.
func NewObjectSource(opts ObjectOptions) (*ObjectSource, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create object client: %w", err)
	}
	return &ObjectSource{client: client, bucket: opts.Bucket, key: opts.Key}, nil
}

// LoadRecords implements faq.CatalogSource.
func (s *ObjectSource) LoadRecords(ctx context.Context) ([]faq.Record, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get faq object: %w", err)
	}
	defer obj.Close()
	data, err := io.ReadAll(io.LimitReader(obj, maxSeedBytes))
	if err != nil {
		return nil, fmt.Errorf("read faq object %s/%s: %w", s.bucket, s.key, err)
	}
	return ParseSeed(data)
}

var _ faq.CatalogSource = (*ObjectSource)(nil)
