package lode

import (
	"context"
	"errors"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/justapithecus/lode/lode"
	lodes3 "github.com/justapithecus/lode/lode/s3"
)

// S3Config locates the artifact dataset in a bucket. Credentials come from
// the default AWS chain.
type S3Config struct {
	Bucket string
	Prefix string
	Region string
	// Endpoint overrides the AWS endpoint (LocalStack, MinIO).
	Endpoint     string
	UsePathStyle bool
}

// Validate reports a missing bucket.
func (c *S3Config) Validate() error {
	if c.Bucket == "" {
		return errors.New("S3 bucket is required")
	}
	return nil
}

func (c *S3Config) clientOptions(o *s3.Options) {
	if c.Endpoint != "" {
		o.BaseEndpoint = &c.Endpoint
	}
	o.UsePathStyle = c.UsePathStyle
}

// ParseS3Path splits "bucket/prefix" (or a bare "bucket").
func ParseS3Path(path string) (bucket, prefix string) {
	bucket, prefix, _ = strings.Cut(path, "/")
	return bucket, prefix
}

// NewS3Factory returns a store factory backed by one shared S3 client.
func NewS3Factory(ctx context.Context, s3cfg S3Config) (lode.StoreFactory, error) {
	if err := s3cfg.Validate(); err != nil {
		return nil, err
	}

	var load []func(*config.LoadOptions) error
	if s3cfg.Region != "" {
		load = append(load, config.WithRegion(s3cfg.Region))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, load...)
	if err != nil {
		return nil, WrapInitError(err, s3cfg.Bucket)
	}

	client := s3.NewFromConfig(awsCfg, s3cfg.clientOptions)
	storeCfg := lodes3.Config{Bucket: s3cfg.Bucket, Prefix: s3cfg.Prefix}
	return func() (lode.Store, error) {
		return lodes3.New(client, storeCfg)
	}, nil
}

// NewDatasetSinkS3 is NewDatasetSink over S3.
func NewDatasetSinkS3(ctx context.Context, cfg Config, s3cfg S3Config) (*DatasetSink, error) {
	factory, err := NewS3Factory(ctx, s3cfg)
	if err != nil {
		return nil, err
	}
	return NewDatasetSinkWithFactory(cfg, factory)
}

// NewReadDatasetS3 opens dataset for queries over S3.
func NewReadDatasetS3(ctx context.Context, dataset string, s3cfg S3Config) (lode.Dataset, error) {
	factory, err := NewS3Factory(ctx, s3cfg)
	if err != nil {
		return nil, err
	}
	return NewDataset(dataset, factory)
}
