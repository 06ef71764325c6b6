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

// RelationshipRepository implements ports.RelationshipRepository on DynamoDB
type RelationshipRepository struct {
	client    *dynamodb.Client
	tableName string
	indexName string
	logger    *zap.Logger
}

// NewRelationshipRepository creates a new DynamoDB relationship repository
func NewRelationshipRepository(client *dynamodb.Client, tableName, indexName string, logger *zap.Logger) *RelationshipRepository {
	return &RelationshipRepository{
		client:    client,
		tableName: tableName,
		indexName: indexName,
		logger:    logger,
	}
}

var _ ports.RelationshipRepository = (*RelationshipRepository)(nil)

// Save persists a relationship
func (r *RelationshipRepository) Save(ctx context.Context, rel *entities.Relationship) error {
	av, err := attributevalue.MarshalMap(newRelationshipItem(rel))
	if err != nil {
		return pkgerrors.Wrap(err, "failed to marshal relationship")
	}

	return withRetry(ctx, "save relationship", func() error {
		_, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName: aws.String(r.tableName),
			Item:      av,
		})
		return err
	})
}

// GetByID retrieves a relationship via the direct lookup index
func (r *RelationshipRepository) GetByID(ctx context.Context, id valueobjects.RelationshipID) (*entities.Relationship, error) {
	item, err := r.getItemByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return item.toEntity()
}

// GetByTreeID retrieves all relationships in a family tree
func (r *RelationshipRepository) GetByTreeID(ctx context.Context, treeID valueobjects.TreeID) ([]*entities.Relationship, error) {
	items, err := r.itemsByTreeID(ctx, treeID, nil)
	if err != nil {
		return nil, err
	}
	rels := make([]*entities.Relationship, 0, len(items))
	for _, item := range items {
		rel, err := item.toEntity()
		if err != nil {
			return nil, err
		}
		rels = append(rels, rel)
	}
	return rels, nil
}

// GetByPersonID retrieves all relationships involving a person. The person's
// tree partition is resolved first, then filtered on either endpoint.
func (r *RelationshipRepository) GetByPersonID(ctx context.Context, personID valueobjects.PersonID) ([]*entities.Relationship, error) {
	items, err := r.itemsByPersonID(ctx, personID)
	if err != nil {
		return nil, err
	}
	rels := make([]*entities.Relationship, 0, len(items))
	for _, item := range items {
		rel, err := item.toEntity()
		if err != nil {
			return nil, err
		}
		rels = append(rels, rel)
	}
	return rels, nil
}

// CountByTreeID returns the number of relationships in a family tree
func (r *RelationshipRepository) CountByTreeID(ctx context.Context, treeID valueobjects.TreeID) (int, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(treePK(treeID))).
		And(expression.Key("SK").BeginsWith("REL#"))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return 0, pkgerrors.Wrap(err, "failed to build count query")
	}

	count := 0
	var lastKey map[string]types.AttributeValue
	for {
		var out *dynamodb.QueryOutput
		err := withRetry(ctx, "count relationships", func() error {
			var err error
			out, err = r.client.Query(ctx, &dynamodb.QueryInput{
				TableName:                 aws.String(r.tableName),
				KeyConditionExpression:    expr.KeyCondition(),
				ExpressionAttributeNames:  expr.Names(),
				ExpressionAttributeValues: expr.Values(),
				Select:                    types.SelectCount,
				ExclusiveStartKey:         lastKey,
			})
			return err
		})
		if err != nil {
			return 0, err
		}
		count += int(out.Count)
		lastKey = out.LastEvaluatedKey
		if lastKey == nil {
			break
		}
	}
	return count, nil
}

// Delete removes a relationship
func (r *RelationshipRepository) Delete(ctx context.Context, id valueobjects.RelationshipID) error {
	item, err := r.getItemByID(ctx, id)
	if err != nil {
		return err
	}

	return withRetry(ctx, "delete relationship", func() error {
		_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(r.tableName),
			Key: map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: item.PK},
				"SK": &types.AttributeValueMemberS{Value: item.SK},
			},
		})
		return err
	})
}

// DeleteByPersonID removes all relationships involving a person in one transaction
func (r *RelationshipRepository) DeleteByPersonID(ctx context.Context, personID valueobjects.PersonID) error {
	items, err := r.itemsByPersonID(ctx, personID)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}

	writes := make([]types.TransactWriteItem, 0, len(items))
	for _, item := range items {
		writes = append(writes, types.TransactWriteItem{
			Delete: &types.Delete{
				TableName: aws.String(r.tableName),
				Key: map[string]types.AttributeValue{
					"PK": &types.AttributeValueMemberS{Value: item.PK},
					"SK": &types.AttributeValueMemberS{Value: item.SK},
				},
			},
		})
	}

	for start := 0; start < len(writes); start += transactBatchSize {
		end := start + transactBatchSize
		if end > len(writes) {
			end = len(writes)
		}
		batch := writes[start:end]
		err := withRetry(ctx, "delete person relationships", func() error {
			_, err := r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
				TransactItems: batch,
			})
			return err
		})
		if err != nil {
			return err
		}
	}

	r.logger.Info("relationships deleted for person",
		zap.String("personID", personID.String()),
		zap.Int("count", len(items)),
	)
	return nil
}

func (r *RelationshipRepository) getItemByID(ctx context.Context, id valueobjects.RelationshipID) (*relationshipItem, error) {
	keyCond := expression.Key("GSI1PK").Equal(expression.Value(relSK(id)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to build relationship lookup")
	}

	var out *dynamodb.QueryOutput
	err = withRetry(ctx, "get relationship", func() error {
		var err error
		out, err = r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(r.tableName),
			IndexName:                 aws.String(r.indexName),
			KeyConditionExpression:    expr.KeyCondition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			Limit:                     aws.Int32(1),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, pkgerrors.NewNotFoundError("relationship")
	}

	var item relationshipItem
	if err := attributevalue.UnmarshalMap(out.Items[0], &item); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to unmarshal relationship")
	}
	return &item, nil
}

// itemsByPersonID resolves the person's tree through GSI1 and filters the
// tree partition's relationship items on either endpoint.
func (r *RelationshipRepository) itemsByPersonID(ctx context.Context, personID valueobjects.PersonID) ([]relationshipItem, error) {
	treeID, err := r.treeOfPerson(ctx, personID)
	if err != nil {
		return nil, err
	}

	filter := expression.Name("FromPersonID").Equal(expression.Value(personID.String())).
		Or(expression.Name("ToPersonID").Equal(expression.Value(personID.String())))
	return r.itemsByTreeID(ctx, treeID, &filter)
}

func (r *RelationshipRepository) itemsByTreeID(
	ctx context.Context,
	treeID valueobjects.TreeID,
	filter *expression.ConditionBuilder,
) ([]relationshipItem, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(treePK(treeID))).
		And(expression.Key("SK").BeginsWith("REL#"))
	builder := expression.NewBuilder().WithKeyCondition(keyCond)
	if filter != nil {
		builder = builder.WithFilter(*filter)
	}
	expr, err := builder.Build()
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to build relationship query")
	}

	var items []relationshipItem
	var lastKey map[string]types.AttributeValue
	for {
		var out *dynamodb.QueryOutput
		err := withRetry(ctx, "list relationships", func() error {
			var err error
			out, err = r.client.Query(ctx, &dynamodb.QueryInput{
				TableName:                 aws.String(r.tableName),
				KeyConditionExpression:    expr.KeyCondition(),
				FilterExpression:          expr.Filter(),
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
			var item relationshipItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				return nil, pkgerrors.Wrap(err, "failed to unmarshal relationship")
			}
			items = append(items, item)
		}

		lastKey = out.LastEvaluatedKey
		if lastKey == nil {
			break
		}
	}
	return items, nil
}

// treeOfPerson resolves which tree a person belongs to via the lookup index
func (r *RelationshipRepository) treeOfPerson(ctx context.Context, personID valueobjects.PersonID) (valueobjects.TreeID, error) {
	keyCond := expression.Key("GSI1PK").Equal(expression.Value(personSK(personID)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return valueobjects.TreeID{}, pkgerrors.Wrap(err, "failed to build person lookup")
	}

	var out *dynamodb.QueryOutput
	err = withRetry(ctx, "get person", func() error {
		var err error
		out, err = r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(r.tableName),
			IndexName:                 aws.String(r.indexName),
			KeyConditionExpression:    expr.KeyCondition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			Limit:                     aws.Int32(1),
		})
		return err
	})
	if err != nil {
		return valueobjects.TreeID{}, err
	}
	if len(out.Items) == 0 {
		return valueobjects.TreeID{}, pkgerrors.NewNotFoundError("person")
	}

	var item personItem
	if err := attributevalue.UnmarshalMap(out.Items[0], &item); err != nil {
		return valueobjects.TreeID{}, pkgerrors.Wrap(err, "failed to unmarshal person")
	}
	return valueobjects.NewTreeIDFromString(item.TreeID)
}
