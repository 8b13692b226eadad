package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// s3Client talks to AWS S3 (or any S3-compatible endpoint) through the v2 SDK.
// The uploader manager covers file transfers; the raw client covers everything else.
type s3Client struct {
	client   *s3.Client
	uploader *manager.Uploader
}

func newS3Client(ctx context.Context, cfg Config) (*s3Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		// A buildable client lets the SDK add a custom CA bundle (AWS_CA_BUNDLE) on top.
		awsconfig.WithHTTPClient(awshttp.NewBuildableClient().WithTransportOptions(cfg.applyTimeouts)),
	}
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	// Static keys win; otherwise the SDK default chain (env, shared config, IMDS) applies.
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: load aws config: %v", ErrNotInitialized, err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(s3Endpoint(cfg))
			o.UsePathStyle = true
		}
	})
	if client == nil {
		return nil, ErrNotInitialized
	}

	return &s3Client{
		client:   client,
		uploader: manager.NewUploader(client),
	}, nil
}

func s3Endpoint(cfg Config) string {
	if strings.HasPrefix(cfg.Endpoint, "http://") || strings.HasPrefix(cfg.Endpoint, "https://") {
		return cfg.Endpoint
	}
	if cfg.UseSSL {
		return "https://" + cfg.Endpoint
	}
	return "http://" + cfg.Endpoint
}

func (c *s3Client) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	_, err := c.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucketName)})
	if err != nil {
		if s3IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("head bucket %s: %w", bucketName, err)
	}
	return true, nil
}

func (c *s3Client) ListObjects(ctx context.Context, bucketName, prefix string) ([]ObjectInfo, error) {
	var out []ObjectInfo
	paginator := s3.NewListObjectsV2Paginator(c.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucketName),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list %s/%s: %w", bucketName, prefix, err)
		}
		for _, obj := range page.Contents {
			out = append(out, ObjectInfo{
				Key:          aws.ToString(obj.Key),
				Size:         aws.ToInt64(obj.Size),
				ETag:         aws.ToString(obj.ETag),
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
	}
	return out, nil
}

func (c *s3Client) StatObject(ctx context.Context, bucketName, objectName string) (ObjectInfo, error) {
	head, err := c.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucketName),
		Key:    aws.String(objectName),
	})
	if err != nil {
		return ObjectInfo{}, s3Error(err, bucketName, objectName)
	}
	return ObjectInfo{
		Key:          objectName,
		Size:         aws.ToInt64(head.ContentLength),
		ETag:         aws.ToString(head.ETag),
		ContentType:  aws.ToString(head.ContentType),
		LastModified: aws.ToTime(head.LastModified),
	}, nil
}

func (c *s3Client) GetObject(ctx context.Context, bucketName, objectName string) (io.ReadCloser, error) {
	resp, err := c.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucketName),
		Key:    aws.String(objectName),
	})
	if err != nil {
		return nil, s3Error(err, bucketName, objectName)
	}
	return resp.Body, nil
}

func (c *s3Client) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64) error {
	_, err := c.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucketName),
		Key:           aws.String(objectName),
		Body:          reader,
		ContentLength: aws.Int64(objectSize),
	})
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", bucketName, objectName, err)
	}
	return nil
}

func (c *s3Client) UploadFile(ctx context.Context, bucketName, objectName, filePath string) (ObjectInfo, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("opening file %s: %w", filePath, err)
	}
	defer func() { _ = file.Close() }()

	stat, err := file.Stat()
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("stat source file: %w", err)
	}

	out, err := c.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucketName),
		Key:    aws.String(objectName),
		Body:   file,
	})
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("upload %s to %s/%s: %w", filePath, bucketName, objectName, err)
	}
	return ObjectInfo{
		Key:  objectName,
		Size: stat.Size(),
		ETag: aws.ToString(out.ETag),
	}, nil
}

func (c *s3Client) RemoveObject(ctx context.Context, bucketName, objectName string) error {
	_, err := c.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucketName),
		Key:    aws.String(objectName),
	})
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", bucketName, objectName, err)
	}
	return nil
}

func s3IsNotFound(err error) bool {
	var noKey *types.NoSuchKey
	if errors.As(err, &noKey) {
		return true
	}
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var noBucket *types.NoSuchBucket
	if errors.As(err, &noBucket) {
		return true
	}
	// HeadObject carries no body, so only the code (or the bare status) identifies a 404.
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey", "404":
			return true
		}
	}
	return false
}

func s3Error(err error, bucketName, objectName string) error {
	if s3IsNotFound(err) {
		return fmt.Errorf("%s/%s: %w", bucketName, objectName, errors.Join(ErrObjectNotFound, err))
	}
	return fmt.Errorf("%s/%s: %w", bucketName, objectName, err)
}
