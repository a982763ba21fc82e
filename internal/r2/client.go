package r2

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/url"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"studyassistant/internal/config"
)

// Client archives uploaded source files to an S3-compatible bucket
// (Cloudflare R2). Archival is best-effort: a nil *Client means archival is
// disabled, and upload failures never fail an ingestion.
type Client struct {
	s3Client  *s3.Client
	bucket    string
	publicURL string
}

// NewClient builds the archival client from configuration. It returns
// (nil, nil) when the R2 settings are absent so the service runs with
// archival disabled.
func NewClient(ctx context.Context, cfg *config.Config) (*Client, error) {
	if !cfg.ArchiveConfigured() {
		log.Info().Msg("Object storage not configured, upload archival disabled")
		return nil, nil
	}

	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL: fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.R2AccountID),
		}, nil
	})

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithEndpointResolverWithOptions(resolver),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.R2AccessKeyID, cfg.R2SecretAccessKey, "")),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("load object storage config: %w", err)
	}

	log.Info().Str("bucket", cfg.R2Bucket).Msg("Object storage archival enabled")
	return &Client{
		s3Client:  s3.NewFromConfig(awsCfg),
		bucket:    cfg.R2Bucket,
		publicURL: cfg.R2PublicURL,
	}, nil
}

// Archive uploads the file under a unique key and returns its public URL.
func (c *Client) Archive(ctx context.Context, filename string, content io.Reader) (string, error) {
	if c == nil || c.s3Client == nil {
		return "", fmt.Errorf("object storage not configured")
	}

	objectKey := fmt.Sprintf("uploads/%s/%s", uuid.New().String(), filename)

	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := c.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(objectKey),
		Body:        content,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("archive upload (key: %s): %w", objectKey, err)
	}

	baseURL, err := url.Parse(c.publicURL)
	if err != nil {
		return "", fmt.Errorf("invalid archive public base URL")
	}
	baseURL.Path = path.Join(baseURL.Path, objectKey)
	return baseURL.String(), nil
}
