// Package s3store keeps artifact slots as objects in an S3 compatible bucket.
package s3store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	aws_config "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	log "github.com/sirupsen/logrus"

	"autostreamml/internal/core/domain"
	ports "autostreamml/internal/core/ports/output"
)

type Config struct {
	EndpointURL     string
	Region          string
	Bucket          string
	Prefix          string
	AccessKeyID     string
	SecretAccessKey string
}

// API is the part of the S3 client the store needs.
type API interface {
	manager.UploadAPIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
}

type slotStore struct {
	client   API
	uploader *manager.Uploader
	bucket   string
	prefix   string
}

// NewClient builds an S3 client. A custom endpoint switches to path-style
// addressing, which MinIO needs.
func NewClient(ctx context.Context, cfg Config) (*s3.Client, error) {
	opts := []func(*aws_config.LoadOptions) error{
		aws_config.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, aws_config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := aws_config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
			o.UsePathStyle = true
		}
	}), nil
}

func NewSlotStore(client API, bucket, prefix string) ports.SlotStore {
	return &slotStore{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   bucket,
		prefix:   prefix,
	}
}

// EnsureBucket creates the bucket unless it already exists.
func EnsureBucket(ctx context.Context, client API, bucket string) error {
	_, err := client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(bucket),
	})
	if err != nil {
		var existErr *types.BucketAlreadyExists
		var ownedErr *types.BucketAlreadyOwnedByYou
		if errors.As(err, &existErr) || errors.As(err, &ownedErr) {
			log.WithField("bucket", bucket).Debug("bucket already exists")
			return nil
		}
		return fmt.Errorf("create bucket %s: %w", bucket, err)
	}

	log.WithField("bucket", bucket).Info("bucket created")
	return nil
}

func (s *slotStore) key(slot ports.Slot) string {
	if s.prefix == "" {
		return string(slot)
	}
	return path.Join(s.prefix, string(slot))
}

func (s *slotStore) Read(ctx context.Context, slot ports.Slot) ([]byte, error) {
	key := s.key(slot)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		var notFound *types.NotFound
		if errors.As(err, &noKey) || errors.As(err, &notFound) {
			return nil, domain.ErrSlotEmpty
		}
		return nil, fmt.Errorf("get s3://%s/%s: %w", s.bucket, key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read s3://%s/%s: %w", s.bucket, key, err)
	}
	return data, nil
}

func (s *slotStore) Write(ctx context.Context, slot ports.Slot, data []byte) error {
	key := s.key(slot)
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("upload s3://%s/%s: %w", s.bucket, key, err)
	}
	log.WithFields(log.Fields{"bucket": s.bucket, "key": key}).Debug("slot uploaded")
	return nil
}
