// Package ssmkv provides a kv.Store on SSM Parameter Store. Values are base64 encoded and kept in SecureString
// parameters named prefix+key, so keys must be valid parameter names.
package ssmkv

import (
	"context"
	"encoding/base64"

	"github.com/advdv/xeno/kv"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/cockroachdb/errors"
)

// API is the part of the SSM client the store uses.
type API interface {
	GetParameter(ctx context.Context, in *ssm.GetParameterInput, opts ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
	PutParameter(ctx context.Context, in *ssm.PutParameterInput, opts ...func(*ssm.Options)) (*ssm.PutParameterOutput, error)
	DeleteParameter(ctx context.Context, in *ssm.DeleteParameterInput, opts ...func(*ssm.Options)) (*ssm.DeleteParameterOutput, error)
}

// Store keeps values as parameters.
type Store struct {
	api    API
	prefix string
}

// New creates a store that names parameters prefix+key.
func New(api API, prefix string) *Store {
	return &Store{api: api, prefix: prefix}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.api.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(s.prefix + key),
		WithDecryption: aws.Bool(true),
	})

	var notFound *types.ParameterNotFound
	if errors.As(err, &notFound) {
		return nil, kv.ErrNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, "failed to get parameter")
	}

	val, err := base64.StdEncoding.DecodeString(aws.ToString(out.Parameter.Value))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode parameter %q", s.prefix+key)
	}

	return val, nil
}

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	if _, err := s.api.PutParameter(ctx, &ssm.PutParameterInput{
		Name:      aws.String(s.prefix + key),
		Value:     aws.String(base64.StdEncoding.EncodeToString(value)),
		Type:      types.ParameterTypeSecureString,
		Overwrite: aws.Bool(true),
	}); err != nil {
		return errors.Wrap(err, "failed to put parameter")
	}

	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.api.DeleteParameter(ctx, &ssm.DeleteParameterInput{
		Name: aws.String(s.prefix + key),
	})

	var notFound *types.ParameterNotFound
	if err != nil && !errors.As(err, &notFound) {
		return errors.Wrap(err, "failed to delete parameter")
	}

	return nil
}

var (
	_ kv.Store = (*Store)(nil)
	_ API      = (*ssm.Client)(nil)
)
