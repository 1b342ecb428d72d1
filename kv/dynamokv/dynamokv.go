// Package dynamokv provides a kv.Store backed by a DynamoDB table. The table must have a string partition key
// named "pk", values are stored in the binary attribute "value".
package dynamokv

import (
	"context"

	"github.com/advdv/xeno/kv"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/cockroachdb/errors"
)

const (
	keyAttr   = "pk"
	valueAttr = "value"
)

// API is the part of the DynamoDB client the store uses.
type API interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// Store is a kv.Store on a single DynamoDB table.
type Store struct {
	api   API
	table string
}

// New creates a store for table.
func New(api API, table string) *Store {
	return &Store{api: api, table: table}
}

func itemKey(key string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{keyAttr: &types.AttributeValueMemberS{Value: key}}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.table),
		Key:            itemKey(key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get item")
	}

	if out.Item == nil {
		return nil, kv.ErrNotFound
	}

	val, ok := out.Item[valueAttr].(*types.AttributeValueMemberB)
	if !ok {
		return nil, errors.Newf("item %q has no binary %q attribute", key, valueAttr)
	}

	return val.Value, nil
}

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	if _, err := s.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item: map[string]types.AttributeValue{
			keyAttr:   &types.AttributeValueMemberS{Value: key},
			valueAttr: &types.AttributeValueMemberB{Value: append([]byte{}, value...)},
		},
	}); err != nil {
		return errors.Wrap(err, "failed to put item")
	}

	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.table),
		Key:       itemKey(key),
	}); err != nil {
		return errors.Wrap(err, "failed to delete item")
	}

	return nil
}

var (
	_ kv.Store = (*Store)(nil)
	_ API      = (*dynamodb.Client)(nil)
)
