// Package attachment generates references to todo attachments stored in S3.
// The object key is the todo id, so every reference for a todo addresses the same object.
package attachment

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"

	"github.com/A-San96/c4-final-project/pkg/logger"
)

// ErrBlobReference wraps every failure to produce or delete an attachment reference.
var ErrBlobReference = errors.New("attachment reference failed")

// S3Attachments implements the attachment contract on one S3 bucket.
type S3Attachments struct {
	client s3iface.S3API
	bucket string
	expiry time.Duration
}

// NewS3Attachments creates the generator. expiry bounds the lifetime of upload URLs.
func NewS3Attachments(client s3iface.S3API, bucket string, expiry time.Duration) (*S3Attachments, error) {
	if bucket == "" {
		return nil, fmt.Errorf("S3 bucket name is required")
	}
	return &S3Attachments{client: client, bucket: bucket, expiry: expiry}, nil
}

// UploadURL returns a presigned PUT URL for the todo's object.
func (s *S3Attachments) UploadURL(ctx context.Context, todoID string) (string, error) {
	logger.Info(ctx, "Generating upload URL", "todo_id", todoID, "bucket", s.bucket)
	req, _ := s.client.PutObjectRequest(&s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey(todoID)),
	})
	req.SetContext(ctx)
	signed, err := req.Presign(s.expiry)
	if err != nil {
		return "", fmt.Errorf("%w: presign upload for %s: %w", ErrBlobReference, todoID, err)
	}
	return signed, nil
}

// ReadURL returns the stable public URL of the todo's object.
func (s *S3Attachments) ReadURL(todoID string) string {
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.bucket, url.PathEscape(objectKey(todoID)))
}

// Delete removes the todo's object. S3 reports success when the object does not exist.
func (s *S3Attachments) Delete(ctx context.Context, todoID string) error {
	logger.Info(ctx, "Deleting attachment", "todo_id", todoID, "bucket", s.bucket)
	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey(todoID)),
	})
	if err != nil {
		return fmt.Errorf("%w: delete %s: %w", ErrBlobReference, todoID, err)
	}
	return nil
}

func objectKey(todoID string) string {
	return todoID
}
