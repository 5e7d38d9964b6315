// Package awsclient starts AWS sessions pointed at either AWS or the LocalStack emulator.
package awsclient

import (
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/sqs"

	"github.com/UKHomeOffice/bucketrelay/internal/config"
)

// AWSConfig translates function settings into SDK settings
func AWSConfig(c *config.Config) *aws.Config {

	ac := &aws.Config{Region: aws.String(c.Region)}

	if c.Endpoint != "" {
		ac.Endpoint = aws.String(c.Endpoint)
		// bucket names can't be resolved as subdomains of the emulator host
		ac.S3ForcePathStyle = aws.Bool(true)
	}
	if c.AccessKeyID != "" && c.SecretAccessKey != "" {
		ac.Credentials = credentials.NewStaticCredentials(c.AccessKeyID, c.SecretAccessKey, "")
	}
	return ac
}

// NewSession returns a session built from c
func NewSession(c *config.Config) (*session.Session, error) {

	sess, err := session.NewSessionWithOptions(session.Options{
		SharedConfigState: session.SharedConfigEnable,
		Config:            *AWSConfig(c),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start aws session: %v", err)
	}
	return sess, nil
}

// NewS3 returns an S3 client
func NewS3(sess *session.Session) *s3.S3 {
	return s3.New(sess)
}

// NewSQS returns an SQS client
func NewSQS(sess *session.Session) *sqs.SQS {
	return sqs.New(sess)
}
