package aws

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/smithy-go"
)

// SessionOptions controls how the shared AWS config is loaded.
type SessionOptions struct {
	Profile     string
	Region      string
	MaxAttempts int
	MaxBackoff  time.Duration
	// AppID is appended to the user agent of every call.
	AppID string
}

// Session carrega a configuração AWS uma vez e mantém cache de clientes por serviço.
type Session struct {
	opts        SessionOptions
	cfg         *aws.Config
	clientCache map[string]interface{}
	mu          sync.Mutex
}

// NewSession cria uma nova Session.
func NewSession(opts SessionOptions) *Session {
	return &Session{
		opts:        opts,
		clientCache: make(map[string]interface{}),
	}
}

// Config returns the loaded AWS config. Transient failures of every client
// built from it are retried by the SDK standard retryer.
func (s *Session) Config(ctx context.Context) (aws.Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cfg != nil {
		return *s.cfg, nil
	}

	loadOpts := []func(*config.LoadOptions) error{
		config.WithRetryer(func() aws.Retryer {
			return retry.NewStandard(func(o *retry.StandardOptions) {
				if s.opts.MaxAttempts > 0 {
					o.MaxAttempts = s.opts.MaxAttempts
				}
				if s.opts.MaxBackoff > 0 {
					o.MaxBackoff = s.opts.MaxBackoff
				}
			})
		}),
	}
	if s.opts.Profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(s.opts.Profile))
	}
	if s.opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(s.opts.Region))
	}
	if s.opts.AppID != "" {
		loadOpts = append(loadOpts, config.WithAppID(s.opts.AppID))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config for profile %q: %w", s.opts.Profile, err)
	}
	if cfg.Region == "" {
		return aws.Config{}, errors.New("no AWS region configured: set --region, AWS_REGION or a profile region")
	}

	s.cfg = &cfg
	return cfg, nil
}

func (s *Session) getServiceClient(ctx context.Context, service string) (interface{}, error) {
	s.mu.Lock()
	if client, ok := s.clientCache[service]; ok {
		s.mu.Unlock()
		return client, nil
	}
	s.mu.Unlock()

	cfg, err := s.Config(ctx)
	if err != nil {
		return nil, err
	}

	var client interface{}
	switch service {
	case "rds":
		client = rds.NewFromConfig(cfg)
	case "cloudwatch":
		client = cloudwatch.NewFromConfig(cfg)
	case "cloudwatchlogs":
		client = cloudwatchlogs.NewFromConfig(cfg)
	case "s3":
		client = s3.NewFromConfig(cfg)
	case "sts":
		client = sts.NewFromConfig(cfg)
	default:
		return nil, fmt.Errorf("unsupported service: %s", service)
	}

	s.mu.Lock()
	s.clientCache[service] = client
	s.mu.Unlock()

	return client, nil
}

// RDS returns the cached RDS client.
func (s *Session) RDS(ctx context.Context) (*rds.Client, error) {
	c, err := s.getServiceClient(ctx, "rds")
	if err != nil {
		return nil, err
	}
	return c.(*rds.Client), nil
}

// CloudWatch returns the cached CloudWatch client.
func (s *Session) CloudWatch(ctx context.Context) (*cloudwatch.Client, error) {
	c, err := s.getServiceClient(ctx, "cloudwatch")
	if err != nil {
		return nil, err
	}
	return c.(*cloudwatch.Client), nil
}

// CloudWatchLogs returns the cached CloudWatch Logs client.
func (s *Session) CloudWatchLogs(ctx context.Context) (*cloudwatchlogs.Client, error) {
	c, err := s.getServiceClient(ctx, "cloudwatchlogs")
	if err != nil {
		return nil, err
	}
	return c.(*cloudwatchlogs.Client), nil
}

// S3 returns the cached S3 client.
func (s *Session) S3(ctx context.Context) (*s3.Client, error) {
	c, err := s.getServiceClient(ctx, "s3")
	if err != nil {
		return nil, err
	}
	return c.(*s3.Client), nil
}

// STS returns the cached STS client.
func (s *Session) STS(ctx context.Context) (*sts.Client, error) {
	c, err := s.getServiceClient(ctx, "sts")
	if err != nil {
		return nil, err
	}
	return c.(*sts.Client), nil
}

// apiError wraps err with the AWS operation and, when present, the API error code.
func apiError(operation string, err error) error {
	var ae smithy.APIError
	if errors.As(err, &ae) {
		return fmt.Errorf("%s failed (%s): %w", operation, ae.ErrorCode(), err)
	}
	return fmt.Errorf("%s failed: %w", operation, err)
}

// errorCode returns the AWS API error code of err, or "".
func errorCode(err error) string {
	var ae smithy.APIError
	if errors.As(err, &ae) {
		return ae.ErrorCode()
	}
	return ""
}
