package s3

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockS3 struct {
	mock.Mock
}

func (m *mockS3) DeleteObjects(ctx context.Context, in *s3.DeleteObjectsInput, _ ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*s3.DeleteObjectsOutput)
	return out, args.Error(1)
}

func TestObjectStore_DeleteObjects_Chunks(t *testing.T) {
	keys := make([]string, 1500)
	for i := range keys {
		keys[i] = fmt.Sprintf("photos/%d.jpg", i)
	}

	client := new(mockS3)
	client.On("DeleteObjects", mock.Anything, mock.MatchedBy(func(in *s3.DeleteObjectsInput) bool {
		return aws.ToString(in.Bucket) == "plant-images" && len(in.Delete.Objects) == 1000
	})).Return(&s3.DeleteObjectsOutput{}, nil).Once()
	client.On("DeleteObjects", mock.Anything, mock.MatchedBy(func(in *s3.DeleteObjectsInput) bool {
		return len(in.Delete.Objects) == 500
	})).Return(&s3.DeleteObjectsOutput{}, nil).Once()

	store := NewObjectStore(client, "plant-images", zap.NewNop())

	require.NoError(t, store.DeleteObjects(context.Background(), keys))
	client.AssertExpectations(t)
}

func TestObjectStore_DeleteObjects_Failures(t *testing.T) {
	t.Run("per-object errors", func(t *testing.T) {
		client := new(mockS3)
		client.On("DeleteObjects", mock.Anything, mock.Anything).Return(&s3.DeleteObjectsOutput{
			Errors: []types.Error{{Key: aws.String("a.jpg"), Code: aws.String("AccessDenied")}},
		}, nil)

		err := NewObjectStore(client, "b", zap.NewNop()).DeleteObjects(context.Background(), []string{"a.jpg", "b.jpg"})
		assert.EqualError(t, err, "1 of 2 objects could not be deleted")
	})

	t.Run("request error", func(t *testing.T) {
		client := new(mockS3)
		client.On("DeleteObjects", mock.Anything, mock.Anything).Return(nil, errors.New("timeout"))

		err := NewObjectStore(client, "b", zap.NewNop()).DeleteObjects(context.Background(), []string{"a.jpg"})
		assert.Error(t, err)
	})

	t.Run("no keys", func(t *testing.T) {
		client := new(mockS3)
		require.NoError(t, NewObjectStore(client, "b", zap.NewNop()).DeleteObjects(context.Background(), nil))
		client.AssertNotCalled(t, "DeleteObjects", mock.Anything, mock.Anything)
	})
}
