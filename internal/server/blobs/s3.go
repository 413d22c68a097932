// Package blobs is the S3-compatible object store holding medication photos.
// Clients upload and download through presigned URLs; deletion is a direct
// call. Every key must lie inside the caller's users/{uid}/ namespace.
package blobs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/medtrack/internal/common"
	sc "github.com/dmitrijs2005/medtrack/internal/server/config"
)

// Seams for tests.
var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
	deleteObject = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectInput) error {
		_, err := c.DeleteObject(ctx, in)
		return err
	}
)

// uploadURLValidity bounds how long a client may take to PUT the bytes.
const uploadURLValidity = 15 * time.Minute

type S3Store struct {
	client   *s3.Client
	presign  *s3.PresignClient
	bucket   string
	validity time.Duration
}

// NewS3Store builds the S3 client once; MinIO needs path-style addressing.
func NewS3Store(ctx context.Context, cfg *sc.Config) (*S3Store, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(cfg.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,
			cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return &S3Store{
		client:   client,
		presign:  newS3PresignClient(client),
		bucket:   cfg.S3Bucket,
		validity: cfg.PresignedURLValidity,
	}, nil
}

// CheckKey reports common.ErrorForbidden for keys outside uid's namespace.
func CheckKey(uid, key string) error {
	if uid == "" || !strings.HasPrefix(key, common.UserNamespace(uid)) || strings.Contains(key, "..") {
		return common.ErrorForbidden
	}
	if len(key) == len(common.UserNamespace(uid)) {
		return common.ErrorForbidden
	}
	return nil
}

// UploadURL presigns a PUT of key with the given content type.
func (s *S3Store) UploadURL(ctx context.Context, uid, key, contentType string) (string, error) {
	if err := CheckKey(uid, key); err != nil {
		return "", err
	}
	in := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	req, err := presignPutObject(s.presign, ctx, in, s3.WithPresignExpires(uploadURLValidity))
	if err != nil {
		return "", fmt.Errorf("presign put: %w", err)
	}
	return req.URL, nil
}

// DownloadURL presigns a GET of key. The URL is what medications store as imageUrl.
func (s *S3Store) DownloadURL(ctx context.Context, uid, key string) (string, error) {
	if err := CheckKey(uid, key); err != nil {
		return "", err
	}
	req, err := presignGetObject(s.presign, ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.validity))
	if err != nil {
		return "", fmt.Errorf("presign get: %w", err)
	}
	return req.URL, nil
}

func (s *S3Store) Delete(ctx context.Context, uid, key string) error {
	if err := CheckKey(uid, key); err != nil {
		return err
	}
	if err := deleteObject(s.client, ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}
