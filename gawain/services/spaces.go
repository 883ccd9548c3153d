package services

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// objectAPI is the subset of the S3 client the service uses.
type objectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// SpacesService stores backups in a DigitalOcean Spaces bucket.
type SpacesService struct {
	client objectAPI
	bucket string
	region string
	prefix string
}

func NewSpacesService(ctx context.Context, spacesKey, spacesSecret, region, bucket, prefix string) (*SpacesService, error) {
	if bucket == "" || region == "" {
		return nil, fmt.Errorf("spaces bucket and region must be configured")
	}

	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL: fmt.Sprintf("https://%s.digitaloceanspaces.com", region),
		}, nil
	})

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithEndpointResolverWithOptions(resolver),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(spacesKey, spacesSecret, "")),
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load Spaces config: %w", err)
	}

	return newSpacesService(s3.NewFromConfig(cfg), region, bucket, prefix), nil
}

func newSpacesService(client objectAPI, region, bucket, prefix string) *SpacesService {
	return &SpacesService{
		client: client,
		bucket: bucket,
		region: region,
		prefix: strings.Trim(prefix, "/"),
	}
}

// ObjectURL is the public address of key; private objects still need signed access.
func (s *SpacesService) ObjectURL(key string) string {
	return fmt.Sprintf("https://%s.%s.digitaloceanspaces.com/%s", s.bucket, s.region, key)
}

func (s *SpacesService) key(name string) string {
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}

// PutJSON uploads body under the configured prefix and returns its key.
func (s *SpacesService) PutJSON(ctx context.Context, name string, body []byte) (string, error) {
	key := s.key(name)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
		ACL:         "private",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return key, nil
}

// ListBackups returns the keys stored under the configured prefix.
func (s *SpacesService) ListBackups(ctx context.Context) ([]string, error) {
	var (
		keys   []string
		token  *string
		prefix string
	)
	if s.prefix != "" {
		prefix = s.prefix + "/"
	}
	for {
		out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list backups: %w", err)
		}
		for _, obj := range out.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
		if !aws.ToBool(out.IsTruncated) {
			return keys, nil
		}
		token = out.NextContinuationToken
	}
}
