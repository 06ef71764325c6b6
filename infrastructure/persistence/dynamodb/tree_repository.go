package dynamodb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"lineage-backend/application/ports"
	"lineage-backend/domain/core/entities"
	"lineage-backend/domain/core/valueobjects"
	pkgerrors "lineage-backend/pkg/errors"
)

// transactBatchSize is DynamoDB's TransactWriteItems item limit
const transactBatchSize = 100

// TreeRepository implements ports.TreeRepository on DynamoDB
type TreeRepository struct {
	client    *dynamodb.Client
	tableName string
	indexName string
	logger    *zap.Logger
}

// NewTreeRepository creates a new DynamoDB tree repository
func NewTreeRepository(client *dynamodb.Client, tableName, indexName string, logger *zap.Logger) *TreeRepository {
	return &TreeRepository{
		client:    client,
		tableName: tableName,
		indexName: indexName,
		logger:    logger,
	}
}

var _ ports.TreeRepository = (*TreeRepository)(nil)

// Save persists a family tree
func (r *TreeRepository) Save(ctx context.Context, tree *entities.FamilyTree) error {
	av, err := attributevalue.MarshalMap(newTreeItem(tree))
	if err != nil {
		return pkgerrors.Wrap(err, "failed to marshal family tree")
	}

	return withRetry(ctx, "save family tree", func() error {
		_, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName: aws.String(r.tableName),
			Item:      av,
		})
		return err
	})
}

// GetByID retrieves a family tree by its ID
func (r *TreeRepository) GetByID(ctx context.Context, id valueobjects.TreeID) (*entities.FamilyTree, error) {
	var out *dynamodb.GetItemOutput
	err := withRetry(ctx, "get family tree", func() error {
		var err error
		out, err = r.client.GetItem(ctx, &dynamodb.GetItemInput{
			TableName: aws.String(r.tableName),
			Key: map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: treePK(id)},
				"SK": &types.AttributeValueMemberS{Value: skMetadata},
			},
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, pkgerrors.NewNotFoundError("family tree")
	}

	var item treeItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to unmarshal family tree")
	}
	return item.toEntity()
}

// GetByOwnerID retrieves all family trees owned by a user via GSI1
func (r *TreeRepository) GetByOwnerID(ctx context.Context, ownerID string) ([]*entities.FamilyTree, error) {
	keyCond := expression.Key("GSI1PK").Equal(expression.Value(ownerGSI1PK(ownerID)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to build owner query")
	}

	var trees []*entities.FamilyTree
	var lastKey map[string]types.AttributeValue
	for {
		var out *dynamodb.QueryOutput
		err := withRetry(ctx, "list family trees", func() error {
			var err error
			out, err = r.client.Query(ctx, &dynamodb.QueryInput{
				TableName:                 aws.String(r.tableName),
				IndexName:                 aws.String(r.indexName),
				KeyConditionExpression:    expr.KeyCondition(),
				ExpressionAttributeNames:  expr.Names(),
				ExpressionAttributeValues: expr.Values(),
				ExclusiveStartKey:         lastKey,
			})
			return err
		})
		if err != nil {
			return nil, err
		}

		for _, raw := range out.Items {
			var item treeItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				return nil, pkgerrors.Wrap(err, "failed to unmarshal family tree")
			}
			tree, err := item.toEntity()
			if err != nil {
				return nil, err
			}
			trees = append(trees, tree)
		}

		lastKey = out.LastEvaluatedKey
		if lastKey == nil {
			break
		}
	}
	return trees, nil
}

// Delete removes a family tree and every item in its partition, batched
// through TransactWriteItems so a partial cascade never survives a crash.
func (r *TreeRepository) Delete(ctx context.Context, id valueobjects.TreeID) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}

	keys, err := r.partitionKeys(ctx, id)
	if err != nil {
		return err
	}

	for start := 0; start < len(keys); start += transactBatchSize {
		end := start + transactBatchSize
		if end > len(keys) {
			end = len(keys)
		}

		items := make([]types.TransactWriteItem, 0, end-start)
		for _, key := range keys[start:end] {
			items = append(items, types.TransactWriteItem{
				Delete: &types.Delete{
					TableName: aws.String(r.tableName),
					Key:       key,
				},
			})
		}

		err := withRetry(ctx, "delete family tree", func() error {
			_, err := r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
				TransactItems: items,
			})
			return err
		})
		if err != nil {
			return err
		}
	}

	r.logger.Info("family tree deleted",
		zap.String("treeID", id.String()),
		zap.Int("items", len(keys)),
	)
	return nil
}

// partitionKeys lists every PK/SK pair in the tree's partition
func (r *TreeRepository) partitionKeys(ctx context.Context, id valueobjects.TreeID) ([]map[string]types.AttributeValue, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(treePK(id)))
	proj := expression.NamesList(expression.Name("PK"), expression.Name("SK"))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).WithProjection(proj).Build()
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to build partition query")
	}

	var keys []map[string]types.AttributeValue
	var lastKey map[string]types.AttributeValue
	for {
		var out *dynamodb.QueryOutput
		err := withRetry(ctx, "scan tree partition", func() error {
			var err error
			out, err = r.client.Query(ctx, &dynamodb.QueryInput{
				TableName:                 aws.String(r.tableName),
				KeyConditionExpression:    expr.KeyCondition(),
				ProjectionExpression:      expr.Projection(),
				ExpressionAttributeNames:  expr.Names(),
				ExpressionAttributeValues: expr.Values(),
				ExclusiveStartKey:         lastKey,
			})
			return err
		})
		if err != nil {
			return nil, err
		}

		for _, raw := range out.Items {
			keys = append(keys, map[string]types.AttributeValue{
				"PK": raw["PK"],
				"SK": raw["SK"],
			})
		}

		lastKey = out.LastEvaluatedKey
		if lastKey == nil {
			break
		}
	}
	return keys, nil
}
