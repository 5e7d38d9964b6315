package objectstore

import (
	"fmt"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/rs/zerolog"

	"github.com/UKHomeOffice/bucketrelay/internal/awsclient"
	"github.com/UKHomeOffice/bucketrelay/internal/config"
)

// NewFromConfig returns a Store using the backend selected by STORE_DRIVER
func NewFromConfig(c *config.Config, sess *session.Session, log zerolog.Logger) (*Store, error) {

	var b Backend

	switch c.StoreDriver {
	case config.DriverMinio:
		mb, err := NewMinioBackend(MinioOptions{
			Endpoint:        c.Endpoint,
			Region:          c.Region,
			AccessKeyID:     c.AccessKeyID,
			SecretAccessKey: c.SecretAccessKey,
			Bucket:          c.Bucket,
		})
		if err != nil {
			return nil, err
		}
		b = mb
	case config.DriverS3, "":
		b = NewS3Backend(awsclient.NewS3(sess), c.Bucket)
	default:
		return nil, fmt.Errorf("unsupported store driver: %q", c.StoreDriver)
	}

	log.Debug().Str("driver", c.StoreDriver).Str("bucket", c.Bucket).Msg("object store ready")
	return NewStore(b, log.With().Str("bucket", c.Bucket).Logger()), nil
}
