package internal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	awsCreds "github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"

	"github.com/formic-dev/formic"
)

// NewS3SchemaRegistry builds a schema registry from *.json objects under
// a bucket prefix. Like the directory registry, everything is fetched once
// at construction time; the bucket is not watched.
func NewS3SchemaRegistry(ctx context.Context, cfg formic.SchemaConfig) (formic.SchemaRegistry, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, formic.NewFormicError(formic.ErrorTypeConfig, formic.ErrCodeSourceUnavailable, "load aws config").WithCause(err)
	}
	// override region if provided
	if cfg.S3Region != "" {
		awsCfg.Region = cfg.S3Region
	}
	if envKey := os.Getenv("AWS_ACCESS_KEY_ID"); envKey != "" {
		// ensure credentials provider from env used explicitly
		awsCfg.Credentials = awsCreds.NewStaticCredentialsProvider(envKey, os.Getenv("AWS_SECRET_ACCESS_KEY"), "")
	}
	client := s3.NewFromConfig(awsCfg)

	documents, err := fetchSchemaObjects(ctx, client, cfg.S3Bucket, cfg.S3Prefix)
	if err != nil {
		return nil, err
	}
	return NewSchemaRegistryFromDocuments(documents)
}

// fetchSchemaObjects lists *.json keys under the prefix and downloads each
// one. Keys are mapped to schema names by their base name minus the
// extension, mirroring the directory layout.
func fetchSchemaObjects(ctx context.Context, client *s3.Client, bucket, prefix string) (map[string][]byte, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
	}
	if prefix != "" {
		input.Prefix = aws.String(strings.TrimSuffix(prefix, "/") + "/")
	}

	documents := make(map[string][]byte)
	seen := NewSet[string]()
	downloader := manager.NewDownloader(client)

	paginator := s3.NewListObjectsV2Paginator(client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, classifyS3Error("list schema objects", err)
		}
		for _, object := range page.Contents {
			key := aws.ToString(object.Key)
			if !strings.HasSuffix(key, ".json") {
				continue
			}
			buf := manager.NewWriteAtBuffer([]byte{})
			if _, err := downloader.Download(ctx, buf, &s3.GetObjectInput{
				Bucket: aws.String(bucket),
				Key:    aws.String(key),
			}); err != nil {
				return nil, classifyS3Error(fmt.Sprintf("download schema object %s", key), err)
			}
			name := strings.TrimSuffix(path.Base(key), ".json")
			// Two keys collapsing to one schema name would make the
			// winner depend on listing order.
			if seen.Contains(name) {
				return nil, formic.NewFormicError(formic.ErrorTypeConfig, formic.ErrCodeSchemaInvalid,
					fmt.Sprintf("duplicate schema name '%s' under prefix", name)).WithDetail("key", key)
			}
			seen.Add(name)
			documents[name] = buf.Bytes()
			zap.S().Debugw("fetched schema object", "bucket", bucket, "key", key, "schema", name)
		}
	}

	return documents, nil
}

// classifyS3Error surfaces the service error code when the failure came
// from the S3 API rather than the transport.
func classifyS3Error(op string, err error) *formic.FormicError {
	fe := formic.NewFormicError(formic.ErrorTypeStorage, formic.ErrCodeSourceUnavailable, op).WithCause(err)
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		fe.WithDetail("aws_error_code", apiErr.ErrorCode())
	}
	return fe
}
