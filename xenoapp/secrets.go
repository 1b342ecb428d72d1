package xenoapp

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-secretsmanager-caching-go/v2/secretcache"
	"github.com/cockroachdb/errors"
	"github.com/tidwall/gjson"
)

// SecretReader reads the string value of a secret.
type SecretReader interface {
	GetSecretString(ctx context.Context, secretID string) (string, error)
}

// AWSSecretReader reads secrets from AWS Secrets Manager through a local cache, so rotated values are picked up
// once the cached entry expires.
type AWSSecretReader struct {
	cache *secretcache.Cache
}

// NewAWSSecretReader creates a reader for the account and region of cfg.
func NewAWSSecretReader(cfg aws.Config) (*AWSSecretReader, error) {
	client := secretsmanager.NewFromConfig(cfg)

	cache, err := secretcache.New(func(c *secretcache.Cache) { c.Client = client })
	if err != nil {
		return nil, errors.Wrap(err, "failed to create secret cache")
	}

	return &AWSSecretReader{cache: cache}, nil
}

func (r *AWSSecretReader) GetSecretString(ctx context.Context, secretID string) (string, error) {
	val, err := r.cache.GetSecretStringWithContext(ctx, secretID)
	if err != nil {
		return "", errors.Wrapf(err, "failed to get secret %q", secretID)
	}

	return val, nil
}

// SecretRef points at a secret and optionally at a value inside it. The text form is "id" or "id#path", where
// path uses gjson syntax such as "database.password" or "keys.0".
type SecretRef struct {
	ID   string
	Path string
}

// ParseSecretRef parses the text form of a reference.
func ParseSecretRef(s string) (SecretRef, error) {
	id, path, _ := strings.Cut(s, "#")
	if id == "" {
		return SecretRef{}, errors.Newf("invalid secret reference %q: missing secret id", s)
	}

	return SecretRef{ID: id, Path: path}, nil
}

func (ref SecretRef) String() string {
	if ref.Path == "" {
		return ref.ID
	}

	return ref.ID + "#" + ref.Path
}

// Resolve reads the secret and, when the reference has a path, extracts that value from the secret's JSON.
// Non-string values are returned in their JSON text form.
func (ref SecretRef) Resolve(ctx context.Context, reader SecretReader) (string, error) {
	if reader == nil {
		return "", errors.New("xenoapp: secret reader not configured")
	}

	val, err := reader.GetSecretString(ctx, ref.ID)
	if err != nil {
		return "", err
	}

	if ref.Path == "" {
		return val, nil
	}

	res := gjson.Get(val, ref.Path)
	if !res.Exists() {
		return "", errors.Newf("path %q not found in secret %q", ref.Path, ref.ID)
	}

	return res.String(), nil
}
