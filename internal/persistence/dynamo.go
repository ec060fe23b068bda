package persistence

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/solarcare/inverter-service/internal/config"
)

// DynamoAPI is the subset of the DynamoDB client used by DynamoStore.
type DynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// DynamoStore implements Store on a single DynamoDB table.
type DynamoStore struct {
	client DynamoAPI
	table  string
}

// NewDynamo loads AWS configuration and builds a table-bound store.
func NewDynamo(ctx context.Context, cfg config.StoreConfig, logger *zap.Logger) (*DynamoStore, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	logger.Info("dynamodb store configured",
		zap.String("table", cfg.TableName),
		zap.String("region", cfg.Region),
		zap.String("endpoint", cfg.Endpoint))
	return NewDynamoStore(client, cfg.TableName), nil
}

// NewDynamoStore wraps an existing client.
func NewDynamoStore(client DynamoAPI, table string) *DynamoStore {
	return &DynamoStore{client: client, table: table}
}

func (s *DynamoStore) PutIfAbsent(ctx context.Context, item Item) error {
	if _, err := keyOf(item); err != nil {
		return err
	}
	expr, err := expression.NewBuilder().
		WithCondition(expression.AttributeNotExists(expression.Name(AttrPK))).
		Build()
	if err != nil {
		return fmt.Errorf("build put condition: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(s.table),
		Item:                     item,
		ConditionExpression:      expr.Condition(),
		ExpressionAttributeNames: expr.Names(),
	})
	return translate(err)
}

func (s *DynamoStore) Get(ctx context.Context, key Key) (Item, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key:       keyAttributes(key),
	})
	if err != nil {
		return nil, translate(err)
	}
	if len(out.Item) == 0 {
		return nil, ErrNotFound
	}
	return out.Item, nil
}

func (s *DynamoStore) Scan(ctx context.Context, filter ScanFilter) ([]Item, error) {
	expr, err := scanExpression(filter)
	if err != nil {
		return nil, err
	}

	paginator := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
		TableName:                 aws.String(s.table),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})

	var items []Item
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, translate(err)
		}
		items = append(items, page.Items...)
	}
	return items, nil
}

func (s *DynamoStore) Update(ctx context.Context, key Key, set map[string]any, guard Guard) (Item, error) {
	if len(set) == 0 {
		return nil, errors.New("update requires at least one attribute")
	}

	builder := expression.NewBuilder().WithUpdate(updateExpression(set))
	if cond, ok := guardCondition(guard); ok {
		builder = builder.WithCondition(cond)
	}
	expr, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("build update expression: %w", err)
	}

	out, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.table),
		Key:                       keyAttributes(key),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		return nil, translate(err)
	}
	return out.Attributes, nil
}

func (s *DynamoStore) Delete(ctx context.Context, key Key, guard Guard) (Item, error) {
	input := &dynamodb.DeleteItemInput{
		TableName:    aws.String(s.table),
		Key:          keyAttributes(key),
		ReturnValues: types.ReturnValueAllOld,
	}
	if cond, ok := guardCondition(guard); ok {
		expr, err := expression.NewBuilder().WithCondition(cond).Build()
		if err != nil {
			return nil, fmt.Errorf("build delete condition: %w", err)
		}
		input.ConditionExpression = expr.Condition()
		input.ExpressionAttributeNames = expr.Names()
		input.ExpressionAttributeValues = expr.Values()
	}

	out, err := s.client.DeleteItem(ctx, input)
	if err != nil {
		return nil, translate(err)
	}
	if len(out.Attributes) == 0 {
		return nil, nil
	}
	return out.Attributes, nil
}

// Ping checks that the table exists and is reachable.
func (s *DynamoStore) Ping(ctx context.Context) error {
	_, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(s.table)})
	return err
}

func scanExpression(filter ScanFilter) (expression.Expression, error) {
	if filter.PKPrefix == "" {
		return expression.Expression{}, errors.New("scan requires a PK prefix")
	}
	conds := []expression.ConditionBuilder{
		expression.Name(AttrPK).BeginsWith(filter.PKPrefix),
	}
	if filter.SK != "" {
		conds = append(conds, expression.Name(AttrSK).Equal(expression.Value(filter.SK)))
	}
	conds = append(conds, equalityConditions(filter.Equals)...)

	cond := conds[0]
	if len(conds) > 1 {
		cond = expression.And(conds[0], conds[1], conds[2:]...)
	}
	expr, err := expression.NewBuilder().WithFilter(cond).Build()
	if err != nil {
		return expression.Expression{}, fmt.Errorf("build scan filter: %w", err)
	}
	return expr, nil
}

func updateExpression(set map[string]any) expression.UpdateBuilder {
	var update expression.UpdateBuilder
	for _, name := range sortedKeys(set) {
		update = update.Set(expression.Name(name), expression.Value(set[name]))
	}
	return update
}

func guardCondition(guard Guard) (expression.ConditionBuilder, bool) {
	if guard.empty() {
		return expression.ConditionBuilder{}, false
	}
	var conds []expression.ConditionBuilder
	if guard.MustExist {
		conds = append(conds, expression.AttributeExists(expression.Name(AttrPK)))
	}
	conds = append(conds, equalityConditions(guard.Equals)...)
	if len(conds) == 1 {
		return conds[0], true
	}
	return expression.And(conds[0], conds[1], conds[2:]...), true
}

func equalityConditions(equals map[string]string) []expression.ConditionBuilder {
	conds := make([]expression.ConditionBuilder, 0, len(equals))
	for _, name := range sortedKeys(equals) {
		conds = append(conds, expression.Name(name).Equal(expression.Value(equals[name])))
	}
	return conds
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return fmt.Errorf("%w: %s", ErrConditionFailed, ccf.ErrorMessage())
	}
	return err
}
