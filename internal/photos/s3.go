package photos

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Store uploads photos to a bucket and returns their public object URL.
type S3Store struct {
	client *s3.Client
	bucket string
	region string
}

func NewS3Store(bucket, region string) (*S3Store, error) {
	if bucket == "" || region == "" {
		return nil, fmt.Errorf("s3 bucket and region are required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &S3Store{
		client: s3.NewFromConfig(awsCfg),
		bucket: bucket,
		region: region,
	}, nil
}

func (s *S3Store) Save(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	if s == nil || s.client == nil {
		return "", fmt.Errorf("s3 client is not initialized")
	}
	name := objectName(filename)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String("results/" + name),
		Body:        r,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("upload photo: %w", err)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/results/%s", s.bucket, s.region, name), nil
}
