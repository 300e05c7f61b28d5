// Package storage resolves resource file paths against the S3-compatible
// bucket (DigitalOcean Spaces) that holds the question papers.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

var ErrEmptyKey = errors.New("storage key is empty")

// SpacesConfig holds configuration for the Spaces client
type SpacesConfig struct {
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Endpoint  string // e.g. blr1.digitaloceanspaces.com
	CDNURL    string
	// PresignTTL > 0 serves files through signed URLs instead of public ones
	PresignTTL time.Duration
}

// SpacesClient handles DigitalOcean Spaces operations
type SpacesClient struct {
	s3Client   s3iface.S3API
	bucket     string
	endpoint   string
	cdnURL     string
	presignTTL time.Duration
}

// NewSpacesClient creates a new Spaces client. No request is made until a
// method needs the network.
func NewSpacesClient(config SpacesConfig) (*SpacesClient, error) {
	if config.Bucket == "" {
		return nil, errors.New("spaces bucket is required")
	}
	endpoint := config.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("%s.digitaloceanspaces.com", config.Region)
	}
	endpoint = strings.TrimPrefix(strings.TrimPrefix(endpoint, "https://"), "http://")

	sess, err := session.NewSession(&aws.Config{
		Credentials: credentials.NewStaticCredentials(
			config.AccessKey,
			config.SecretKey,
			"",
		),
		Endpoint:         aws.String("https://" + endpoint),
		Region:           aws.String(config.Region),
		S3ForcePathStyle: aws.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Spaces session: %w", err)
	}

	return &SpacesClient{
		s3Client:   s3.New(sess),
		bucket:     config.Bucket,
		endpoint:   endpoint,
		cdnURL:     strings.TrimSuffix(config.CDNURL, "/"),
		presignTTL: config.PresignTTL,
	}, nil
}

// GetFileURL returns the public URL for a file
func (s *SpacesClient) GetFileURL(key string) string {
	key = strings.TrimPrefix(key, "/")
	if s.cdnURL != "" {
		return fmt.Sprintf("%s/%s", s.cdnURL, key)
	}
	return fmt.Sprintf("https://%s.%s/%s", s.bucket, s.endpoint, key)
}

// Resolve turns a stored file path into a fetchable URL; it satisfies
// resources.URLResolver
func (s *SpacesClient) Resolve(key string) (string, error) {
	key = strings.TrimPrefix(strings.TrimSpace(key), "/")
	if key == "" {
		return "", ErrEmptyKey
	}
	if s.presignTTL > 0 {
		return s.PresignedURL(key, s.presignTTL)
	}
	return s.GetFileURL(key), nil
}

// PresignedURL signs a GET for key, valid for ttl. Signing is local.
func (s *SpacesClient) PresignedURL(key string, ttl time.Duration) (string, error) {
	req, _ := s.s3Client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	signed, err := req.Presign(ttl)
	if err != nil {
		return "", fmt.Errorf("failed to presign %q: %w", key, err)
	}
	return signed, nil
}

// Object is one listed bucket entry
type Object struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// ListFiles lists every object under prefix, following continuation tokens
func (s *SpacesClient) ListFiles(ctx context.Context, prefix string) ([]Object, error) {
	var out []Object
	err := s.s3Client.ListObjectsV2PagesWithContext(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	}, func(page *s3.ListObjectsV2Output, last bool) bool {
		for _, obj := range page.Contents {
			if strings.HasSuffix(aws.StringValue(obj.Key), "/") {
				continue
			}
			out = append(out, Object{
				Key:          aws.StringValue(obj.Key),
				Size:         aws.Int64Value(obj.Size),
				LastModified: aws.TimeValue(obj.LastModified),
			})
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	return out, nil
}
