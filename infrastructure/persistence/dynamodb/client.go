// Package dynamodb implements the repository ports on a DynamoDB
// single-table layout:
//
//	PK=TREE#<treeID>  SK=METADATA            family tree metadata
//	PK=TREE#<treeID>  SK=PERSON#<personID>   person record
//	PK=TREE#<treeID>  SK=REL#<relID>         relationship record
//
// GSI1 inverts the layout for direct lookups by entity id
// (GSI1PK=PERSON#<id> or REL#<id>) and for listing a user's trees
// (GSI1PK=OWNER#<userID>).
package dynamodb

import (
	"context"
	"errors"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	pkgerrors "lineage-backend/pkg/errors"
)

const (
	maxRetries     = 3
	retryBaseDelay = 50 * time.Millisecond
)

// NewClient creates a DynamoDB client for the given region
func NewClient(ctx context.Context, region string) (*dynamodb.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to load AWS config")
	}
	return dynamodb.NewFromConfig(cfg), nil
}

// withRetry runs the call with bounded exponential backoff on throttling and
// internal server errors. Anything still failing after the last attempt
// surfaces as a StorageUnavailableError so handlers map it to 503.
func withRetry(ctx context.Context, operation string, call func() error) error {
	var err error
	delay := retryBaseDelay
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return pkgerrors.NewStorageUnavailableError(operation, ctx.Err())
			case <-time.After(delay):
			}
			delay *= 2
		}
		err = call()
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return err
		}
	}
	return pkgerrors.NewStorageUnavailableError(operation, err)
}

func isRetryable(err error) bool {
	var throttled *types.ProvisionedThroughputExceededException
	var internal *types.InternalServerError
	var limit *types.LimitExceededException
	return errors.As(err, &throttled) || errors.As(err, &internal) || errors.As(err, &limit)
}
