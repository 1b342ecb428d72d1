package xenoapp

import (
	"context"

	"github.com/advdv/xeno/kv"
	"github.com/advdv/xeno/kv/dynamokv"
	"github.com/advdv/xeno/kv/memkv"
	"github.com/advdv/xeno/kv/pebblekv"
	"github.com/advdv/xeno/kv/rediskv"
	"github.com/advdv/xeno/kv/s3kv"
	"github.com/advdv/xeno/kv/ssmkv"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// StoreParams holds the dependencies for opening the key-value store.
type StoreParams struct {
	fx.In

	Lifecycle    fx.Lifecycle
	Env          Environment
	Logger       *zap.Logger
	AWSConfig    aws.Config
	SecretReader SecretReader
}

// NewStore opens the store selected by XENO_KV_BACKEND. Stores that hold connections or files are closed when
// the app stops.
func NewStore(p StoreParams) (kv.Store, error) {
	env := p.Env.base()

	var (
		store  kv.Store
		closer func() error
	)

	switch env.KVBackend {
	case KVMemory, "":
		store = memkv.New()
	case KVPebble:
		s, err := pebblekv.Open(env.KVPebbleDir)
		if err != nil {
			return nil, err
		}

		store, closer = s, s.Close
	case KVRedis:
		opts := &redis.Options{Addr: env.KVRedisAddr}
		if env.KVRedisPasswordRef != "" {
			ctx, cancel := context.WithTimeout(context.Background(), awsConfigTimeout)
			defer cancel()

			ref, err := ParseSecretRef(env.KVRedisPasswordRef)
			if err != nil {
				return nil, err
			}

			password, err := ref.Resolve(ctx, p.SecretReader)
			if err != nil {
				return nil, errors.Wrap(err, "failed to read redis password")
			}

			opts.Password = password
		}

		client := redis.NewClient(opts)
		store, closer = rediskv.New(client, env.KVPrefix), client.Close
	case KVDynamoDB:
		store = dynamokv.New(dynamodb.NewFromConfig(p.AWSConfig.Copy()), env.KVTable)
	case KVS3:
		store = s3kv.New(s3.NewFromConfig(p.AWSConfig.Copy()), env.KVBucket, env.KVPrefix)
	case KVSSM:
		store = ssmkv.New(ssm.NewFromConfig(p.AWSConfig.Copy()), env.KVPrefix)
	default:
		return nil, errors.Newf("unsupported XENO_KV_BACKEND: %q", env.KVBackend)
	}

	p.Logger.Info("opened key-value store", zap.String("backend", env.KVBackend))

	if closer != nil {
		p.Lifecycle.Append(fx.Hook{
			OnStop: func(context.Context) error {
				return closer()
			},
		})
	}

	return store, nil
}
