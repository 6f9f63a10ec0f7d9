package notify

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
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/google/uuid"
)

var loadDefaultAWSConfig = config.LoadDefaultConfig

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type getPresigner interface {
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Options locate an S3-compatible store such as MinIO.
type S3Options struct {
	Region       string
	AccessKey    string
	SecretKey    string
	BaseEndpoint string
}

// NewS3Clients returns a path-style client and its presigner.
func NewS3Clients(ctx context.Context, o S3Options) (*s3.Client, *s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(o.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(o.AccessKey, o.SecretKey, "")))
	if err != nil {
		return nil, nil, err
	}

	client := s3.NewFromConfig(cfg, func(so *s3.Options) {
		if o.BaseEndpoint != "" {
			so.BaseEndpoint = aws.String(o.BaseEndpoint)
		}
		so.UsePathStyle = true
	})
	return client, s3.NewPresignClient(client), nil
}

// PreviewSender sends through next and then archives the rendered message in
// a bucket, returning a presigned link to it. Archive failures only lose the
// link.
type PreviewSender struct {
	next      Sender
	putter    objectPutter
	presigner getPresigner
	bucket    string
	expires   time.Duration
	logger    logging.Logger
	now       func() time.Time
}

func NewPreviewSender(next Sender, putter objectPutter, presigner getPresigner, bucket string, logger logging.Logger) *PreviewSender {
	return &PreviewSender{
		next:      next,
		putter:    putter,
		presigner: presigner,
		bucket:    bucket,
		expires:   time.Hour,
		logger:    logger.With("module", "notify.preview"),
		now:       time.Now,
	}
}

func (s *PreviewSender) Send(ctx context.Context, msg Message) (*Delivery, error) {
	d, err := s.next.Send(ctx, msg)
	if err != nil {
		return nil, err
	}
	if d == nil {
		d = &Delivery{}
	}

	url, err := s.archive(ctx, msg)
	if err != nil {
		s.logger.Warn(ctx, "mail preview not stored", "to", msg.To, "error", err)
		return d, nil
	}
	d.PreviewURL = url
	return d, nil
}

func (s *PreviewSender) archive(ctx context.Context, msg Message) (string, error) {
	key := s.storageKey()
	body := fmt.Sprintf("To: %s\nSubject: %s\n\n%s", msg.To, msg.Subject, msg.Body)

	_, err := s.putter.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        strings.NewReader(body),
		ContentType: aws.String("text/plain; charset=utf-8"),
	})
	if err != nil {
		return "", fmt.Errorf("put preview: %w", err)
	}

	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.expires))
	if err != nil {
		return "", fmt.Errorf("presign preview: %w", err)
	}
	return req.URL, nil
}

func (s *PreviewSender) storageKey() string {
	d := s.now().UTC()
	return fmt.Sprintf("previews/%d/%02d/%02d/%s.txt", d.Year(), d.Month(), d.Day(), uuid.NewString())
}
