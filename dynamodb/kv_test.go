package dynamodb_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"moviehub/dynamodb"
	"moviehub/errs"
	"moviehub/pkg/kv/kvtest"

	"github.com/aws/aws-sdk-go-v2/aws"
	ddb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// table keeps items in memory, keyed by the "key" attribute.
type table struct {
	mu    sync.Mutex
	items map[string]map[string]types.AttributeValue
}

func newTable() *table {
	return &table{items: make(map[string]map[string]types.AttributeValue)}
}

func keyOf(k map[string]types.AttributeValue) string {
	return k["key"].(*types.AttributeValueMemberS).Value
}

func (t *table) GetItem(_ context.Context, in *ddb.GetItemInput, _ ...func(*ddb.Options)) (*ddb.GetItemOutput, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return &ddb.GetItemOutput{Item: t.items[keyOf(in.Key)]}, nil
}

func (t *table) PutItem(_ context.Context, in *ddb.PutItemInput, _ ...func(*ddb.Options)) (*ddb.PutItemOutput, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.items[keyOf(in.Item)] = in.Item
	return &ddb.PutItemOutput{}, nil
}

func (t *table) DeleteItem(_ context.Context, in *ddb.DeleteItemInput, _ ...func(*ddb.Options)) (*ddb.DeleteItemOutput, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.items, keyOf(in.Key))
	return &ddb.DeleteItemOutput{}, nil
}

type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) GetItem(ctx context.Context, in *ddb.GetItemInput, _ ...func(*ddb.Options)) (*ddb.GetItemOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*ddb.GetItemOutput)
	return out, args.Error(1)
}

func (m *MockAPI) PutItem(ctx context.Context, in *ddb.PutItemInput, _ ...func(*ddb.Options)) (*ddb.PutItemOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*ddb.PutItemOutput)
	return out, args.Error(1)
}

func (m *MockAPI) DeleteItem(ctx context.Context, in *ddb.DeleteItemInput, _ ...func(*ddb.Options)) (*ddb.DeleteItemOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*ddb.DeleteItemOutput)
	return out, args.Error(1)
}

func TestKVStore(t *testing.T) {
	t.Run("should require a table name", func(t *testing.T) {
		_, err := dynamodb.NewKVStore(newTable(), " ")

		assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))
	})

	store, err := dynamodb.NewKVStore(newTable(), "moviehub_kv")
	require.NoError(t, err)
	kvtest.Run(t, store)

	t.Run("should write to the configured table", func(t *testing.T) {
		api := new(MockAPI)
		api.On("PutItem", mock.Anything, mock.MatchedBy(func(in *ddb.PutItemInput) bool {
			value, ok := in.Item["value"].(*types.AttributeValueMemberS)
			return aws.ToString(in.TableName) == "kv" && ok && value.Value == `["1"]`
		})).Return(&ddb.PutItemOutput{}, nil).Once()
		s, err := dynamodb.NewKVStore(api, "kv")
		require.NoError(t, err)

		assert.NoError(t, s.Set(context.Background(), "movie-app-favorites", `["1"]`))
		api.AssertExpectations(t)
	})

	t.Run("should wrap client failures", func(t *testing.T) {
		api := new(MockAPI)
		api.On("GetItem", mock.Anything, mock.Anything).Return(nil, errors.New("throttled")).Once()
		s, err := dynamodb.NewKVStore(api, "kv")
		require.NoError(t, err)

		_, ok, err := s.Get(context.Background(), "auth-storage")

		assert.False(t, ok)
		assert.Equal(t, errs.EPERSISTENCE, errs.ErrorCode(err))
		api.AssertExpectations(t)
	})
}

func TestNewClient(t *testing.T) {
	t.Run("should require a region", func(t *testing.T) {
		_, err := dynamodb.NewClient(context.Background(), dynamodb.Options{})

		assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))
	})

	t.Run("should require both static keys", func(t *testing.T) {
		_, err := dynamodb.NewClient(context.Background(), dynamodb.Options{Region: "us-east-1", AccessKey: "a"})

		assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))
	})

	t.Run("should build a client for a local endpoint", func(t *testing.T) {
		c, err := dynamodb.NewClient(context.Background(), dynamodb.Options{
			Region:    "us-east-1",
			Endpoint:  "http://localhost:8000",
			AccessKey: "local",
			SecretKey: "local",
		})

		require.NoError(t, err)
		assert.NotNil(t, c)
	})
}

func TestOpen(t *testing.T) {
	t.Run("should reject a missing table before any request", func(t *testing.T) {
		_, err := dynamodb.Open(context.Background(), dynamodb.Options{
			Region:      "us-east-1",
			Endpoint:    "http://localhost:8000",
			AccessKey:   "local",
			SecretKey:   "local",
			MaxAttempts: 1,
		})

		assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))
	})
}
