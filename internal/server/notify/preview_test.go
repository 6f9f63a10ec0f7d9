package notify

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	key  string
	body string
	err  error
}

func (f *fakePutter) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.key = aws.ToString(in.Key)
	b, _ := io.ReadAll(in.Body)
	f.body = string(b)
	return &s3.PutObjectOutput{}, nil
}

type fakePresigner struct {
	key string
	err error
}

func (f *fakePresigner) PresignGetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.key = aws.ToString(in.Key)
	return &v4.PresignedHTTPRequest{URL: "http://minio/" + aws.ToString(in.Bucket) + "/" + f.key + "?sig=1"}, nil
}

type stubSender struct {
	sent []Message
	err  error
}

func (s *stubSender) Send(ctx context.Context, msg Message) (*Delivery, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.sent = append(s.sent, msg)
	return &Delivery{}, nil
}

func TestPreviewSender_StoresAndLinks(t *testing.T) {
	next := &stubSender{}
	put := &fakePutter{}
	pre := &fakePresigner{}
	s := NewPreviewSender(next, put, pre, "mail-previews", logging.Discard())
	s.now = func() time.Time { return time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC) }

	d, err := s.Send(context.Background(), Message{To: "a@x.com", Subject: "Verify your email", Body: "code 123456"})
	require.NoError(t, err)

	require.Len(t, next.sent, 1)
	assert.True(t, strings.HasPrefix(put.key, "previews/2025/05/01/"))
	assert.Equal(t, put.key, pre.key)
	assert.Contains(t, put.body, "code 123456")
	assert.Equal(t, "http://minio/mail-previews/"+put.key+"?sig=1", d.PreviewURL)
}

func TestPreviewSender_ArchiveFailureKeepsDelivery(t *testing.T) {
	s := NewPreviewSender(&stubSender{}, &fakePutter{err: errors.New("bucket missing")}, &fakePresigner{}, "b", logging.Discard())

	d, err := s.Send(context.Background(), Message{To: "a@x.com"})
	require.NoError(t, err)
	assert.Empty(t, d.PreviewURL)

	s = NewPreviewSender(&stubSender{}, &fakePutter{}, &fakePresigner{err: errors.New("no creds")}, "b", logging.Discard())
	d, err = s.Send(context.Background(), Message{To: "a@x.com"})
	require.NoError(t, err)
	assert.Empty(t, d.PreviewURL)
}

func TestPreviewSender_NextFails(t *testing.T) {
	put := &fakePutter{}
	s := NewPreviewSender(&stubSender{err: errors.New("smtp down")}, put, &fakePresigner{}, "b", logging.Discard())

	_, err := s.Send(context.Background(), Message{To: "a@x.com"})
	assert.EqualError(t, err, "smtp down")
	assert.Empty(t, put.key, "nothing archived when delivery failed")
}

func TestNewS3Clients(t *testing.T) {
	orig := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = orig })

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "us-east-1", lo.Region)
		assert.NotNil(t, lo.Credentials)
		return aws.Config{Region: lo.Region}, nil
	}

	client, presign, err := NewS3Clients(context.Background(), S3Options{
		Region: "us-east-1", AccessKey: "minioadmin", SecretKey: "minioadmin", BaseEndpoint: "http://127.0.0.1:9000",
	})
	require.NoError(t, err)
	assert.NotNil(t, client)
	assert.NotNil(t, presign)
	assert.True(t, client.Options().UsePathStyle)
	assert.Equal(t, "http://127.0.0.1:9000", aws.ToString(client.Options().BaseEndpoint))

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("load fail")
	}
	_, _, err = NewS3Clients(context.Background(), S3Options{})
	assert.EqualError(t, err, "load fail")
}
