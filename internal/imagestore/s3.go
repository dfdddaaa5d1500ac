package imagestore

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/altairhq/usermanagement/config"
	"github.com/altairhq/usermanagement/internal/dto"
	apperrors "github.com/altairhq/usermanagement/internal/errors"
	"github.com/altairhq/usermanagement/pkg/circuit"
	"github.com/altairhq/usermanagement/pkg/logger"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Store uploads profile images to an S3-compatible bucket. A circuit
// breaker fails uploads fast while the store is down.
type S3Store struct {
	client  *s3.Client
	bucket  string
	baseURL string
	breaker *circuit.Breaker
}

// NewS3Store builds the client from static credentials and the configured
// endpoint, which may be any S3-compatible service.
func NewS3Store(cfg *config.Config) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.ImageStore.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.ImageStore.AccessKey,
			cfg.ImageStore.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("failed to load image store config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.ImageStore.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.ImageStore.Endpoint)
			o.UsePathStyle = true
		}
	})

	baseURL := strings.TrimSuffix(cfg.ImageStore.Endpoint, "/")
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.ImageStore.Bucket, cfg.ImageStore.Region)
	} else {
		baseURL = fmt.Sprintf("%s/%s", baseURL, cfg.ImageStore.Bucket)
	}

	return &S3Store{
		client:  client,
		bucket:  cfg.ImageStore.Bucket,
		baseURL: baseURL,
		breaker: circuit.NewBreaker("image-store", circuit.DefaultConfig(), logger.GetLogger()),
	}, nil
}

// storageKey spreads objects by date and randomizes the name so concurrent
// uploads never collide.
func storageKey(filename string) string {
	d := time.Now()
	ext := strings.ToLower(filepath.Ext(filename))
	return fmt.Sprintf("profiles/%d/%02d/%02d/%v%s", d.Year(), d.Month(), d.Day(), uuid.New(), ext)
}

// SaveImage uploads the file and returns its public URL.
func (s *S3Store) SaveImage(ctx context.Context, file *dto.FileUpload) (string, error) {
	if !IsValidImage(file.Filename) {
		return "", apperrors.NewValidationError("profile picture must be a jpg, jpeg, png or gif image")
	}

	body, err := file.Open()
	if err != nil {
		return "", apperrors.WrapError(apperrors.ErrExternalService, err)
	}
	defer body.Close()

	key := storageKey(file.Filename)

	err = s.breaker.Execute(func() error {
		_, putErr := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(s.bucket),
			Key:           aws.String(key),
			Body:          body,
			ContentLength: aws.Int64(file.Size),
			ContentType:   aws.String(contentType(file.Filename)),
		})
		return putErr
	})
	if err != nil {
		logger.ErrorWithContext(ctx, "Image upload failed").
			String("key", key).
			Err(err).
			Log()
		return "", apperrors.WrapError(apperrors.ErrExternalService, err)
	}

	url := fmt.Sprintf("%s/%s", s.baseURL, key)

	logger.InfoWithContext(ctx, "Image uploaded").
		String("key", key).
		Int64("size", file.Size).
		Log()

	return url, nil
}

// DeleteImage removes a previously uploaded image given its public URL.
// URLs from outside this store's bucket are ignored.
func (s *S3Store) DeleteImage(ctx context.Context, url string) error {
	key, ok := s.keyFromURL(url)
	if !ok {
		return nil
	}

	err := s.breaker.Execute(func() error {
		_, delErr := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
		return delErr
	})
	if err != nil {
		logger.ErrorWithContext(ctx, "Image delete failed").
			String("key", key).
			Err(err).
			Log()
		return apperrors.WrapError(apperrors.ErrExternalService, err)
	}

	return nil
}

func (s *S3Store) keyFromURL(url string) (string, bool) {
	prefix := s.baseURL + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	return strings.TrimPrefix(url, prefix), true
}

func contentType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}
