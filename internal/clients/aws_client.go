package clients

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

var (
	awsCfg   aws.Config
	awsErr   error
	awsOnce  sync.Once
	endpoint string
)

// InitAWSConfig loads the shared AWS config once. An empty awsEndpoint uses
// the regional AWS endpoint; local runs point it at DynamoDB Local.
func InitAWSConfig(ctx context.Context, region, awsEndpoint string) (aws.Config, error) {
	awsOnce.Do(func() {
		slog.Info("[AWSClient] Initializing AWS Config...",
			slog.String("region", region),
			slog.String("endpoint", awsEndpoint))

		cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
		if err != nil {
			awsErr = fmt.Errorf("[AWSClient] Failed to load AWS config: %w", err)
			return
		}

		awsCfg = cfg
		endpoint = awsEndpoint
		slog.Info("[AWSClient] AWS Config Initialized")
	})

	return awsCfg, awsErr
}

func GetDynamoDBClient(ctx context.Context, region, awsEndpoint string) (*dynamodb.Client, error) {
	cfg, err := InitAWSConfig(ctx, region, awsEndpoint)
	if err != nil {
		return nil, err
	}
	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	}), nil
}
