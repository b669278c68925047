package deploy

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// S3API is the subset of the S3 client the publisher uses.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Config struct {
	Bucket        string
	Region        string
	Prefix        string
	PublicBaseURL string
}

// S3Publisher stores each deployment as <prefix>/<uuid>/index.html in a
// bucket served as a static website or behind a CDN.
type S3Publisher struct {
	client S3API
	cfg    S3Config
	newKey func() string
}

// NewS3Publisher builds a client from the default AWS credential chain.
func NewS3Publisher(ctx context.Context, cfg S3Config) (*S3Publisher, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewS3PublisherWithClient(s3.NewFromConfig(awsCfg), cfg), nil
}

func NewS3PublisherWithClient(client S3API, cfg S3Config) *S3Publisher {
	return &S3Publisher{client: client, cfg: cfg, newKey: uuid.NewString}
}

func (p *S3Publisher) Name() string { return "s3" }

func (p *S3Publisher) Publish(ctx context.Context, html string) (string, error) {
	key := path.Join(p.cfg.Prefix, p.newKey(), "index.html")

	_, err := p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(p.cfg.Bucket),
		Key:          aws.String(key),
		Body:         strings.NewReader(html),
		ContentType:  aws.String("text/html; charset=utf-8"),
		CacheControl: aws.String("public, max-age=300"),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s to bucket %s: %w", key, p.cfg.Bucket, err)
	}
	return strings.TrimSuffix(p.cfg.PublicBaseURL, "/") + "/" + key, nil
}
