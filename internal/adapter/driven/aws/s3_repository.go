package aws

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API is the subset of the S3 client the artifact store needs.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3ArtifactStore uploads exported reports to s3://bucket/prefix.
type S3ArtifactStore struct {
	client S3API
}

// NewS3ArtifactStore cria um novo S3ArtifactStore.
func NewS3ArtifactStore(client S3API) *S3ArtifactStore {
	return &S3ArtifactStore{client: client}
}

// ParseS3URI splits s3://bucket/prefix into its bucket and key prefix.
func ParseS3URI(uri string) (bucket, prefix string, err error) {
	rest, ok := strings.CutPrefix(uri, "s3://")
	if !ok {
		return "", "", fmt.Errorf("invalid S3 URI %q: missing s3:// scheme", uri)
	}
	bucket, prefix, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("invalid S3 URI %q: missing bucket", uri)
	}
	return bucket, strings.Trim(prefix, "/"), nil
}

// Upload puts every file under target and returns the resulting URIs.
func (s *S3ArtifactStore) Upload(ctx context.Context, target string, paths []string) ([]string, error) {
	bucket, prefix, err := ParseS3URI(target)
	if err != nil {
		return nil, err
	}

	uploaded := make([]string, 0, len(paths))
	for _, p := range paths {
		key := path.Join(prefix, filepath.Base(p))
		if err := s.put(ctx, bucket, key, p); err != nil {
			return uploaded, err
		}
		uploaded = append(uploaded, fmt.Sprintf("s3://%s/%s", bucket, key))
	}
	return uploaded, nil
}

func (s *S3ArtifactStore) put(ctx context.Context, bucket, key, file string) error {
	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("opening %s: %w", file, err)
	}
	defer f.Close()

	input := &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   f,
	}
	if ct := mime.TypeByExtension(filepath.Ext(file)); ct != "" {
		input.ContentType = aws.String(ct)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return apiError(fmt.Sprintf("PutObject s3://%s/%s", bucket, key), err)
	}
	return nil
}
