package objstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	getObject  func(in *s3.GetObjectInput) (*s3.GetObjectOutput, error)
	headBucket func(in *s3.HeadBucketInput) (*s3.HeadBucketOutput, error)
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	return f.getObject(in)
}

func (f *fakeS3) HeadBucket(_ context.Context, in *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	return f.headBucket(in)
}

func TestDownloadReadsObject(t *testing.T) {
	b := NewBucket(&fakeS3{
		getObject: func(in *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
			assert.Equal(t, "data-bucket", aws.ToString(in.Bucket))
			assert.Equal(t, "listings/l-1.json", aws.ToString(in.Key))
			return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader([]byte(`{"files":[]}`)))}, nil
		},
	}, "data-bucket")

	data, err := b.Download(context.Background(), "listings/l-1.json")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"files":[]}`), data)
	assert.Equal(t, "data-bucket", b.Name())
}

func TestDownloadMapsMissingKey(t *testing.T) {
	b := NewBucket(&fakeS3{
		getObject: func(*s3.GetObjectInput) (*s3.GetObjectOutput, error) {
			return nil, &s3types.NoSuchKey{}
		},
	}, "data-bucket")

	_, err := b.Download(context.Background(), "listings/missing.json")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDownloadWrapsOtherErrors(t *testing.T) {
	apiErr := errors.New("access denied")
	b := NewBucket(&fakeS3{
		getObject: func(*s3.GetObjectInput) (*s3.GetObjectOutput, error) {
			return nil, apiErr
		},
	}, "data-bucket")

	_, err := b.Download(context.Background(), "listings/l-1.json")
	assert.ErrorIs(t, err, apiErr)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestVerify(t *testing.T) {
	b := NewBucket(&fakeS3{
		headBucket: func(in *s3.HeadBucketInput) (*s3.HeadBucketOutput, error) {
			assert.Equal(t, "data-bucket", aws.ToString(in.Bucket))
			return &s3.HeadBucketOutput{}, nil
		},
	}, "data-bucket")
	assert.NoError(t, b.Verify(context.Background()))

	headErr := errors.New("forbidden")
	b = NewBucket(&fakeS3{
		headBucket: func(*s3.HeadBucketInput) (*s3.HeadBucketOutput, error) {
			return nil, headErr
		},
	}, "data-bucket")
	assert.ErrorIs(t, b.Verify(context.Background()), headErr)
}
