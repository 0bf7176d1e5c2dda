package s3

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestStore_Put(t *testing.T) {
	mockClient := new(MockS3Client)
	store := NewStore(mockClient, "logs", DefaultUploadConfig())

	var uploaded string
	mockClient.On("PutObject", mock.Anything, mock.MatchedBy(func(input *s3.PutObjectInput) bool {
		return *input.Bucket == "logs" && *input.Key == "app/ls.logpool.host.part0.txt"
	})).Run(func(args mock.Arguments) {
		input := args.Get(1).(*s3.PutObjectInput)
		data, _ := io.ReadAll(input.Body)
		uploaded = string(data)
	}).Return(&s3.PutObjectOutput{}, nil).Once()

	err := store.Put(context.Background(), "app/ls.logpool.host.part0.txt", strings.NewReader("line1\nline2\n"), 12)
	require.NoError(t, err)
	assert.Equal(t, "line1\nline2\n", uploaded)
	mockClient.AssertExpectations(t)
}

func TestStore_Put_Error(t *testing.T) {
	mockClient := new(MockS3Client)
	store := NewStore(mockClient, "logs", UploadConfig{})

	mockClient.On("PutObject", mock.Anything, mock.Anything).
		Return(nil, errors.New("access denied")).Once()

	err := store.Put(context.Background(), "k", strings.NewReader("x"), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "s3://logs/k")
}

func TestStore_Exists(t *testing.T) {
	mockClient := new(MockS3Client)
	store := NewStore(mockClient, "logs", DefaultUploadConfig())

	t.Run("NotFound", func(t *testing.T) {
		mockClient.On("HeadObject", mock.Anything, mock.MatchedBy(func(input *s3.HeadObjectInput) bool {
			return *input.Key == "missing"
		})).Return(nil, &types.NotFound{}).Once()

		ok, err := store.Exists(context.Background(), "missing")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("NoSuchKey", func(t *testing.T) {
		mockClient.On("HeadObject", mock.Anything, mock.MatchedBy(func(input *s3.HeadObjectInput) bool {
			return *input.Key == "gone"
		})).Return(nil, &types.NoSuchKey{}).Once()

		ok, err := store.Exists(context.Background(), "gone")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Found", func(t *testing.T) {
		mockClient.On("HeadObject", mock.Anything, mock.MatchedBy(func(input *s3.HeadObjectInput) bool {
			return *input.Key == "present"
		})).Return(&s3.HeadObjectOutput{ContentLength: aws.Int64(3)}, nil).Once()

		ok, err := store.Exists(context.Background(), "present")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("Error", func(t *testing.T) {
		mockClient.On("HeadObject", mock.Anything, mock.MatchedBy(func(input *s3.HeadObjectInput) bool {
			return *input.Key == "broken"
		})).Return(nil, errors.New("timeout")).Once()

		_, err := store.Exists(context.Background(), "broken")
		assert.Error(t, err)
	})
}

func TestStore_Delete(t *testing.T) {
	mockClient := new(MockS3Client)
	store := NewStore(mockClient, "logs", DefaultUploadConfig())

	mockClient.On("DeleteObject", mock.Anything, mock.MatchedBy(func(input *s3.DeleteObjectInput) bool {
		return *input.Bucket == "logs" && *input.Key == "del"
	})).Return(&s3.DeleteObjectOutput{}, nil).Once()

	require.NoError(t, store.Delete(context.Background(), "del"))

	mockClient.On("DeleteObject", mock.Anything, mock.MatchedBy(func(input *s3.DeleteObjectInput) bool {
		return *input.Key == "already-gone"
	})).Return(nil, &types.NoSuchKey{}).Once()

	require.NoError(t, store.Delete(context.Background(), "already-gone"))
	mockClient.AssertExpectations(t)
}

func TestDefaultUploadConfig(t *testing.T) {
	cfg := DefaultUploadConfig()
	assert.Equal(t, int64(8*1024*1024), cfg.PartSize)
	assert.Equal(t, 5, cfg.Concurrency)
	assert.True(t, cfg.EnableChecksum)
}
