// Package s3image keeps volume images in an object store so the CLI can pull
// an image to a local file, work on it, and push it back.
package s3image

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	. "github.com/weberc2/ecsfs/pkg/types"
)

const ObjectNotFoundErr ConstError = "object not found"

type ObjectStore interface {
	PutObject(ctx context.Context, bucket, key string, data io.ReadSeeker) error
	GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error)
	ListObjects(ctx context.Context, bucket, prefix string) ([]string, error)
}

type S3ObjectStore struct {
	Client s3iface.S3API
}

func (os *S3ObjectStore) PutObject(
	ctx context.Context,
	bucket string,
	key string,
	data io.ReadSeeker,
) error {
	if _, err := os.Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   data,
	}); err != nil {
		return fmt.Errorf(
			"putting object in bucket `%s` at key `%s`: %w",
			bucket,
			key,
			err,
		)
	}
	return nil
}

func (os *S3ObjectStore) GetObject(
	ctx context.Context,
	bucket string,
	key string,
) (io.ReadCloser, error) {
	rsp, err := os.Client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if err, ok := err.(awserr.Error); ok {
			if err.Code() == s3.ErrCodeNoSuchKey {
				return nil, fmt.Errorf(
					"getting object from bucket `%s` at key `%s`: %w",
					bucket,
					key,
					ObjectNotFoundErr,
				)
			}
		}
		return nil, fmt.Errorf(
			"getting object from bucket `%s` at key `%s`: %w",
			bucket,
			key,
			err,
		)
	}
	return rsp.Body, nil
}

func (os *S3ObjectStore) ListObjects(
	ctx context.Context,
	bucket string,
	prefix string,
) ([]string, error) {
	var keys []string
	if err := os.Client.ListObjectsPagesWithContext(
		ctx,
		&s3.ListObjectsInput{
			Bucket: aws.String(bucket),
			Prefix: aws.String(prefix),
		},
		func(rsp *s3.ListObjectsOutput, lastPage bool) bool {
			for _, object := range rsp.Contents {
				keys = append(keys, aws.StringValue(object.Key))
			}
			return true
		},
	); err != nil {
		return nil, fmt.Errorf(
			"listing objects in bucket `%s` with prefix `%s`: %w",
			bucket,
			prefix,
			err,
		)
	}
	return keys, nil
}
