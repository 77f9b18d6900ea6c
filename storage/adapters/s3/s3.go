package s3

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/bignyap/cloud-uploader/storage/api"
	"github.com/bignyap/cloud-uploader/storage/config"
)

// Service implements the backend contract for AWS S3.
type Service struct {
	client *awss3.Client
	cfg    config.S3Config
}

var _ api.BackendService = (*Service)(nil)

// New creates the S3 backend adapter.
func New(cfg config.S3Config) (*Service, error) {
	var awsOpts []func(*awsconfig.LoadOptions) error
	awsOpts = append(awsOpts, awsconfig.WithRegion(cfg.Region))

	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		awsOpts = append(awsOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Opts []func(*awss3.Options)
	if cfg.Endpoint != "" {
		// Path-style addressing is required by most S3-compatible services.
		s3Opts = append(s3Opts, func(o *awss3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}

	return &Service{
		client: awss3.NewFromConfig(awsCfg, s3Opts...),
		cfg:    cfg,
	}, nil
}

func (s *Service) ID() api.BackendID {
	return api.BackendS3
}

// Upload puts the file into the configured bucket under its original name.
func (s *Service) Upload(ctx context.Context, req *api.UploadRequest) api.UploadResult {
	if req.Name == "" {
		return api.FailedUpload(api.BackendS3, api.NewBackendError(
			api.KindVendorPermanent, api.BackendS3, "upload requires a file name", nil))
	}

	_, err := s.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(req.Name),
		Body:          req.Reader(),
		ContentType:   aws.String(req.ContentType),
		ContentLength: aws.Int64(req.Size()),
	})
	if err != nil {
		return api.FailedUpload(api.BackendS3, normalize("S3 upload failed", err))
	}

	return api.UploadResult{
		Backend: api.BackendS3,
		Success: true,
		Message: fmt.Sprintf("File '%s' uploaded successfully to S3", req.Name),
		FileURL: s.objectURL(req.Name),
	}
}

// List returns key, size and last-modified for every object in the bucket.
func (s *Service) List(ctx context.Context) ([]api.FileDescriptor, error) {
	out, err := s.client.ListObjectsV2(ctx, &awss3.ListObjectsV2Input{
		Bucket: aws.String(s.cfg.Bucket),
	})
	if err != nil {
		return nil, normalize("failed to list S3 files", err)
	}

	files := make([]api.FileDescriptor, 0, len(out.Contents))
	for _, obj := range out.Contents {
		fd := api.FileDescriptor{
			Name: aws.ToString(obj.Key),
			Size: aws.ToInt64(obj.Size),
		}
		if obj.LastModified != nil {
			fd.LastModified = *obj.LastModified
		}
		files = append(files, fd)
	}
	return files, nil
}

func (s *Service) objectURL(key string) string {
	if s.cfg.Endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(s.cfg.Endpoint, "/"), s.cfg.Bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, s.cfg.Region, key)
}

// transientCodes are S3 error codes worth retrying on the client side.
var transientCodes = map[string]bool{
	"SlowDown":           true,
	"RequestTimeout":     true,
	"ServiceUnavailable": true,
	"InternalError":      true,
	"Throttling":         true,
	"ThrottlingException": true,
}

var authCodes = map[string]bool{
	"AccessDenied":          true,
	"InvalidAccessKeyId":    true,
	"SignatureDoesNotMatch": true,
	"ExpiredToken":          true,
	"TokenRefreshRequired":  true,
}

// normalize maps an AWS SDK failure onto the backend error taxonomy.
func normalize(msg string, err error) *api.BackendError {
	kind := api.KindUnknown

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		switch {
		case authCodes[code]:
			kind = api.KindAuthRequired
		case transientCodes[code]:
			kind = api.KindVendorTransient
		case code == "NoSuchBucket" || code == "InvalidBucketName" ||
			code == "EntityTooLarge" || code == "InvalidArgument":
			kind = api.KindVendorPermanent
		}
	}

	if kind == api.KindUnknown {
		var respErr *awshttp.ResponseError
		if errors.As(err, &respErr) {
			kind = api.KindFromHTTPStatus(respErr.HTTPStatusCode())
		}
	}

	return api.NewBackendError(kind, api.BackendS3, msg, err)
}
