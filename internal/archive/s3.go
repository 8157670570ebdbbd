// Package archive delivers audit exports to long-term storage for the
// compliance retention story.
package archive

import (
	"bytes"
	"context"
	"log/slog"
	"path"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	dErrors "meridian/pkg/domain-errors"
)

// S3Sink uploads exported audit files to an S3 bucket. It implements
// audit.Sink. Object keys are date-prefixed so repeated exports of the
// same filename never overwrite each other.
type S3Sink struct {
	bucket string
	prefix string
	svc    *s3.S3
	logger *slog.Logger
	now    func() time.Time
}

// S3Option configures the sink.
type S3Option func(*S3Sink)

// WithS3Logger sets the diagnostic logger.
func WithS3Logger(l *slog.Logger) S3Option {
	return func(s *S3Sink) {
		s.logger = l
	}
}

// NewS3Sink builds a sink for the bucket using the ambient AWS credential
// chain (env, shared config, instance role).
func NewS3Sink(region, bucket, prefix string, opts ...S3Option) (*S3Sink, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "could not create aws session")
	}

	sink := &S3Sink{
		bucket: bucket,
		prefix: prefix,
		svc:    s3.New(sess),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(sink)
	}
	return sink, nil
}

// Deliver uploads the file under {prefix}/{YYYY-MM-DD}/{unix}-{filename}.
func (s *S3Sink) Deliver(ctx context.Context, filename string, data []byte) error {
	now := s.now().UTC()
	key := path.Join(s.prefix, now.Format("2006-01-02"), now.Format("20060102T150405Z")+"-"+filename)

	_, err := s.svc.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "could not upload audit archive")
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "audit archive uploaded",
			"bucket", s.bucket,
			"key", key,
			"bytes", len(data),
		)
	}
	return nil
}
