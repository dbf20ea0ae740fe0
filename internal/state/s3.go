package state

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// objectAPI is the subset of the S3 client used by S3Store.
type objectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Options configures an S3Store.
type S3Options struct {
	Bucket string
	Key    string
	Region string
	// Endpoint selects an S3-compatible service instead of AWS.
	Endpoint string
	// AccessKey and SecretKey are optional static credentials. Without them
	// the default AWS credential chain is used.
	AccessKey string
	SecretKey string
}

// S3Store keeps state in an object of an S3-compatible bucket.
type S3Store struct {
	client objectAPI
	bucket string
	key    string
}

// NewS3Store creates an S3-backed store.
func NewS3Store(ctx context.Context, opts S3Options) (*S3Store, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("s3 state backend requires a bucket")
	}
	if opts.Key == "" {
		return nil, fmt.Errorf("s3 state backend requires a key")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
	}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newS3Store(client, opts.Bucket, opts.Key), nil
}

func newS3Store(client objectAPI, bucket, key string) *S3Store {
	return &S3Store{client: client, bucket: bucket, key: key}
}

// Location implements Store.
func (b *S3Store) Location() string {
	return fmt.Sprintf("s3://%s/%s", b.bucket, b.key)
}

// Load implements Store.
func (b *S3Store) Load(ctx context.Context, workflow string) (*WorkflowState, error) {
	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key),
	})
	if err != nil {
		if isNoSuchKey(err) {
			return New(workflow), nil
		}
		return nil, fmt.Errorf("failed to read state from %s: %w", b.Location(), err)
	}
	defer func() { _ = out.Body.Close() }()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read state body from %s: %w", b.Location(), err)
	}
	return Decode(data, b.Location(), workflow)
}

// Save implements Store.
func (b *S3Store) Save(ctx context.Context, s *WorkflowState) error {
	data, err := Encode(s)
	if err != nil {
		return err
	}

	_, err = b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:               aws.String(b.bucket),
		Key:                  aws.String(b.key),
		Body:                 bytes.NewReader(data),
		ContentType:          aws.String("application/yaml"),
		ServerSideEncryption: types.ServerSideEncryptionAes256,
	})
	if err != nil {
		return fmt.Errorf("failed to write state to %s: %w", b.Location(), err)
	}
	return nil
}

// Lock implements Store. The lock object is created with a conditional
// write that fails when it already exists.
func (b *S3Store) Lock(ctx context.Context) error {
	host, _ := os.Hostname()
	body := fmt.Sprintf("host=%s\npid=%d\ntime=%s\n", host, os.Getpid(), time.Now().UTC().Format(time.RFC3339))

	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(b.lockKey()),
		Body:        bytes.NewReader([]byte(body)),
		IfNoneMatch: aws.String("*"),
	})
	if err != nil {
		if isPreconditionFailed(err) {
			return fmt.Errorf("%w (lock object: s3://%s/%s). If this is an error, delete the lock object manually",
				ErrLocked, b.bucket, b.lockKey())
		}
		return fmt.Errorf("failed to acquire state lock: %w", err)
	}
	return nil
}

// Unlock implements Store.
func (b *S3Store) Unlock(ctx context.Context) error {
	_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.lockKey()),
	})
	if err != nil && !isNoSuchKey(err) {
		return fmt.Errorf("failed to release state lock: %w", err)
	}
	return nil
}

func (b *S3Store) lockKey() string {
	return b.key + ".lock"
}

func isNoSuchKey(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "NoSuchKey" || code == "NotFound"
	}
	return false
}

func isPreconditionFailed(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "PreconditionFailed" || code == "ConditionalRequestConflict"
	}
	return false
}
