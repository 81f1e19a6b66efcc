package dynamodb

import (
	"context"
	"strings"
	"time"

	"moviehub/errs"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// API is the part of the DynamoDB client the store uses.
type API interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

type entryItem struct {
	Key       string `dynamodbav:"key"`
	Value     string `dynamodbav:"value"`
	UpdatedAt int64  `dynamodbav:"updated_at"`
}

// KVStore implements kv.Store on a table whose partition key is the string attribute "key".
type KVStore struct {
	client API
	table  string
	now    func() time.Time
}

func NewKVStore(client API, table string) (*KVStore, error) {
	table = strings.TrimSpace(table)
	if table == "" {
		return nil, errs.Errorf(errs.EINVALID, "dynamodb: table name is required")
	}
	return &KVStore{client: client, table: table, now: time.Now}, nil
}

func (s *KVStore) Get(ctx context.Context, key string) (string, bool, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.table),
		Key:            itemKey(key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return "", false, errs.Wrap(errs.EPERSISTENCE, err, "dynamodb: get entry")
	}
	if len(out.Item) == 0 {
		return "", false, nil
	}

	var item entryItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return "", false, errs.Wrap(errs.EPERSISTENCE, err, "dynamodb: unmarshal entry")
	}
	return item.Value, true, nil
}

func (s *KVStore) Set(ctx context.Context, key, value string) error {
	av, err := attributevalue.MarshalMap(entryItem{
		Key:       key,
		Value:     value,
		UpdatedAt: s.now().Unix(),
	})
	if err != nil {
		return errs.Wrap(errs.EPERSISTENCE, err, "dynamodb: marshal entry")
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      av,
	})
	if err != nil {
		return errs.Wrap(errs.EPERSISTENCE, err, "dynamodb: put entry")
	}
	return nil
}

// Remove succeeds when the entry does not exist.
func (s *KVStore) Remove(ctx context.Context, key string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.table),
		Key:       itemKey(key),
	})
	if err != nil {
		return errs.Wrap(errs.EPERSISTENCE, err, "dynamodb: delete entry")
	}
	return nil
}

func itemKey(key string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"key": &types.AttributeValueMemberS{Value: key},
	}
}
