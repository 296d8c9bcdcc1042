package s3

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	"plant-backend/application/ports"
	pkgerrors "plant-backend/pkg/errors"
)

// deleteObjectsLimit is the maximum number of keys in one DeleteObjects call
const deleteObjectsLimit = 1000

// API is the part of the S3 client the object store uses
type API interface {
	DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
}

// ObjectStore deletes photo objects from the image bucket
type ObjectStore struct {
	client API
	bucket string
	logger *zap.Logger
}

// NewObjectStore creates a new ObjectStore
func NewObjectStore(client API, bucket string, logger *zap.Logger) *ObjectStore {
	return &ObjectStore{client: client, bucket: bucket, logger: logger}
}

var _ ports.ObjectStore = (*ObjectStore)(nil)

// DeleteObjects removes the given keys. Missing keys are not an error.
func (s *ObjectStore) DeleteObjects(ctx context.Context, keys []string) error {
	for start := 0; start < len(keys); start += deleteObjectsLimit {
		end := start + deleteObjectsLimit
		if end > len(keys) {
			end = len(keys)
		}
		if err := s.deleteChunk(ctx, keys[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (s *ObjectStore) deleteChunk(ctx context.Context, keys []string) error {
	objects := make([]types.ObjectIdentifier, 0, len(keys))
	for _, key := range keys {
		objects = append(objects, types.ObjectIdentifier{Key: aws.String(key)})
	}

	out, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(s.bucket),
		Delete: &types.Delete{
			Objects: objects,
			Quiet:   aws.Bool(true),
		},
	})
	if err != nil {
		return pkgerrors.NewExternalError("s3", err)
	}

	if len(out.Errors) > 0 {
		for _, e := range out.Errors {
			s.logger.Error("Failed to delete object",
				zap.String("bucket", s.bucket),
				zap.String("key", aws.ToString(e.Key)),
				zap.String("code", aws.ToString(e.Code)),
				zap.String("message", aws.ToString(e.Message)),
			)
		}
		return fmt.Errorf("%d of %d objects could not be deleted", len(out.Errors), len(keys))
	}

	s.logger.Debug("Deleted objects",
		zap.String("bucket", s.bucket),
		zap.Int("count", len(keys)),
	)
	return nil
}
