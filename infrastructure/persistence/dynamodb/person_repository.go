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

// PersonRepository implements ports.PersonRepository on DynamoDB
type PersonRepository struct {
	client    *dynamodb.Client
	tableName string
	indexName string
	logger    *zap.Logger
	relRepo   *RelationshipRepository
}

// NewPersonRepository creates a new DynamoDB person repository. The
// relationship repository is needed for the cascade on Delete.
func NewPersonRepository(
	client *dynamodb.Client,
	tableName, indexName string,
	relRepo *RelationshipRepository,
	logger *zap.Logger,
) *PersonRepository {
	return &PersonRepository{
		client:    client,
		tableName: tableName,
		indexName: indexName,
		logger:    logger,
		relRepo:   relRepo,
	}
}

var _ ports.PersonRepository = (*PersonRepository)(nil)

// Save persists a person
func (r *PersonRepository) Save(ctx context.Context, person *entities.Person) error {
	av, err := attributevalue.MarshalMap(newPersonItem(person))
	if err != nil {
		return pkgerrors.Wrap(err, "failed to marshal person")
	}

	return withRetry(ctx, "save person", func() error {
		_, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName: aws.String(r.tableName),
			Item:      av,
		})
		return err
	})
}

// GetByID retrieves a person via the direct lookup index
func (r *PersonRepository) GetByID(ctx context.Context, id valueobjects.PersonID) (*entities.Person, error) {
	item, err := r.getItemByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return item.toEntity()
}

// GetByTreeID retrieves all people in a family tree
func (r *PersonRepository) GetByTreeID(ctx context.Context, treeID valueobjects.TreeID) ([]*entities.Person, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(treePK(treeID))).
		And(expression.Key("SK").BeginsWith("PERSON#"))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to build people query")
	}

	var people []*entities.Person
	var lastKey map[string]types.AttributeValue
	for {
		var out *dynamodb.QueryOutput
		err := withRetry(ctx, "list people", func() error {
			var err error
			out, err = r.client.Query(ctx, &dynamodb.QueryInput{
				TableName:                 aws.String(r.tableName),
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
			var item personItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				return nil, pkgerrors.Wrap(err, "failed to unmarshal person")
			}
			person, err := item.toEntity()
			if err != nil {
				return nil, err
			}
			people = append(people, person)
		}

		lastKey = out.LastEvaluatedKey
		if lastKey == nil {
			break
		}
	}
	return people, nil
}

// CountByTreeID returns the number of people in a family tree
func (r *PersonRepository) CountByTreeID(ctx context.Context, treeID valueobjects.TreeID) (int, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(treePK(treeID))).
		And(expression.Key("SK").BeginsWith("PERSON#"))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return 0, pkgerrors.Wrap(err, "failed to build count query")
	}

	count := 0
	var lastKey map[string]types.AttributeValue
	for {
		var out *dynamodb.QueryOutput
		err := withRetry(ctx, "count people", func() error {
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

// Delete removes a person and every incident relationship in one transaction
func (r *PersonRepository) Delete(ctx context.Context, id valueobjects.PersonID) error {
	item, err := r.getItemByID(ctx, id)
	if err != nil {
		return err
	}

	relItems, err := r.relRepo.itemsByPersonID(ctx, id)
	if err != nil {
		return err
	}

	items := make([]types.TransactWriteItem, 0, len(relItems)+1)
	items = append(items, types.TransactWriteItem{
		Delete: &types.Delete{
			TableName: aws.String(r.tableName),
			Key: map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: item.PK},
				"SK": &types.AttributeValueMemberS{Value: item.SK},
			},
		},
	})
	for _, rel := range relItems {
		items = append(items, types.TransactWriteItem{
			Delete: &types.Delete{
				TableName: aws.String(r.tableName),
				Key: map[string]types.AttributeValue{
					"PK": &types.AttributeValueMemberS{Value: rel.PK},
					"SK": &types.AttributeValueMemberS{Value: rel.SK},
				},
			},
		})
	}

	for start := 0; start < len(items); start += transactBatchSize {
		end := start + transactBatchSize
		if end > len(items) {
			end = len(items)
		}
		batch := items[start:end]
		err := withRetry(ctx, "delete person", func() error {
			_, err := r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
				TransactItems: batch,
			})
			return err
		})
		if err != nil {
			return err
		}
	}

	r.logger.Info("person deleted with cascade",
		zap.String("personID", id.String()),
		zap.Int("relationships", len(relItems)),
	)
	return nil
}

func (r *PersonRepository) getItemByID(ctx context.Context, id valueobjects.PersonID) (*personItem, error) {
	keyCond := expression.Key("GSI1PK").Equal(expression.Value(personSK(id)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to build person lookup")
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
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, pkgerrors.NewNotFoundError("person")
	}

	var item personItem
	if err := attributevalue.UnmarshalMap(out.Items[0], &item); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to unmarshal person")
	}
	return &item, nil
}
