// Package dynamodb stores key-value entries in a DynamoDB table.
package dynamodb

import (
	"context"
	"strings"

	"moviehub/errs"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// Options locate the key-value table. Static keys are optional; without
// them the default AWS credential chain is used.
type Options struct {
	Region       string
	Endpoint     string
	AccessKey    string
	SecretKey    string
	SessionToken string
	Table        string

	// MaxAttempts overrides the SDK retry count when positive.
	MaxAttempts int
}

// Open builds a client from opts and returns the store on opts.Table.
func Open(ctx context.Context, opts Options) (*KVStore, error) {
	client, err := NewClient(ctx, opts)
	if err != nil {
		return nil, err
	}
	return NewKVStore(client, opts.Table)
}

func NewClient(ctx context.Context, opts Options) (*dynamodb.Client, error) {
	region := strings.TrimSpace(opts.Region)
	if region == "" {
		return nil, errs.Errorf(errs.EINVALID, "dynamodb: region is required")
	}

	load := []func(*awscfg.LoadOptions) error{awscfg.WithRegion(region)}
	if opts.MaxAttempts > 0 {
		load = append(load, awscfg.WithRetryMaxAttempts(opts.MaxAttempts))
	}
	if opts.AccessKey != "" || opts.SecretKey != "" || opts.SessionToken != "" {
		if opts.AccessKey == "" || opts.SecretKey == "" {
			return nil, errs.Errorf(errs.EINVALID, "dynamodb: access key and secret key must be set together")
		}
		provider := credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, opts.SessionToken)
		load = append(load, awscfg.WithCredentialsProvider(provider))
	}

	cfg, err := awscfg.LoadDefaultConfig(ctx, load...)
	if err != nil {
		return nil, errs.Wrap(errs.EPERSISTENCE, err, "dynamodb: load aws config")
	}

	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	}), nil
}
