package awsclient

import (
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/A-San96/c4-final-project/internal/config"
)

// NewSession creates the AWS session shared by the DynamoDB and S3 clients.
// A custom endpoint (e.g. localstack) switches S3 to path-style addressing.
func NewSession(cfg *config.Config) (*session.Session, error) {
	awsCfg := &aws.Config{
		Region: aws.String(cfg.AWSRegion),
	}
	if cfg.AWSEndpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.AWSEndpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}
	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("create AWS session: %w", err)
	}
	return sess, nil
}

// DynamoDB returns a DynamoDB client on the session.
func DynamoDB(sess *session.Session) *dynamodb.DynamoDB {
	return dynamodb.New(sess)
}

// S3 returns an S3 client on the session.
func S3(sess *session.Session) *s3.S3 {
	return s3.New(sess)
}
