package xenoapp

import (
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/samber/lo"
	"go.uber.org/zap/zapcore"
)

// LambdaMaxResponsePayloadBytes is AWS Lambda's 6 MiB limit minus 1 KiB headroom for JSON/API Gateway overhead.
const LambdaMaxResponsePayloadBytes = 6*1024*1024 - 1024

// KV backends selectable with XENO_KV_BACKEND.
const (
	KVMemory   = "memory"
	KVPebble   = "pebble"
	KVRedis    = "redis"
	KVDynamoDB = "dynamodb"
	KVS3       = "s3"
	KVSSM      = "ssm"
)

var kvBackends = []string{KVMemory, KVPebble, KVRedis, KVDynamoDB, KVS3, KVSSM}

// Environment defines the interface that all environment configurations must implement.
// Embed BaseEnvironment in your struct to satisfy this interface.
type Environment interface {
	base() BaseEnvironment
}

// BaseEnvironment contains the variables every xeno service reads. Embed this in your custom environment struct.
type BaseEnvironment struct {
	Port               int           `env:"XENO_PORT,required"`
	ServiceName        string        `env:"XENO_SERVICE_NAME,required"`
	ReadinessCheckPath string        `env:"XENO_READINESS_CHECK_PATH" envDefault:"/health"`
	LogLevel           zapcore.Level `env:"XENO_LOG_LEVEL" envDefault:"info"`
	DebugErrors        bool          `env:"XENO_DEBUG_ERRORS" envDefault:"false"`
	OtelExporter       string        `env:"XENO_OTEL_EXPORTER" envDefault:"stdout"`
	MaxBodyBytes       int64         `env:"XENO_MAX_BODY_BYTES" envDefault:"6290432"`
	RequestTimeout     time.Duration `env:"XENO_REQUEST_TIMEOUT" envDefault:"0s"`
	LambdaTimeout      time.Duration `env:"XENO_LAMBDA_TIMEOUT" envDefault:"30s"`
	ErrorStatusMin     int           `env:"XENO_ERROR_STATUS_MIN" envDefault:"500"`
	ErrorStatusMax     int           `env:"XENO_ERROR_STATUS_MAX" envDefault:"599"`
	H2C                bool          `env:"XENO_H2C" envDefault:"false"`
	MetricsPath        string        `env:"XENO_METRICS_PATH" envDefault:"/metrics"`
	AWSRegion          string        `env:"AWS_REGION"`

	KVBackend          string `env:"XENO_KV_BACKEND" envDefault:"memory"`
	KVPebbleDir        string `env:"XENO_KV_PEBBLE_DIR"`
	KVRedisAddr        string `env:"XENO_KV_REDIS_ADDR"`
	KVRedisPasswordRef string `env:"XENO_KV_REDIS_PASSWORD_SECRET"`
	KVTable            string `env:"XENO_KV_TABLE"`
	KVBucket           string `env:"XENO_KV_BUCKET"`
	KVPrefix           string `env:"XENO_KV_PREFIX"`
}

func (e BaseEnvironment) base() BaseEnvironment { return e }

// Validate checks the combinations the parser cannot express.
func (e BaseEnvironment) Validate() error {
	if !lo.Contains(kvBackends, e.KVBackend) {
		return errors.Newf("unsupported XENO_KV_BACKEND: %q (supported: %s)", e.KVBackend, strings.Join(kvBackends, ", "))
	}

	required := map[string]struct {
		name, val string
	}{
		KVPebble:   {"XENO_KV_PEBBLE_DIR", e.KVPebbleDir},
		KVRedis:    {"XENO_KV_REDIS_ADDR", e.KVRedisAddr},
		KVDynamoDB: {"XENO_KV_TABLE", e.KVTable},
		KVS3:       {"XENO_KV_BUCKET", e.KVBucket},
	}

	if req, ok := required[e.KVBackend]; ok && req.val == "" {
		return errors.Newf("%s is required for the %s backend", req.name, e.KVBackend)
	}

	if e.ErrorStatusMin > e.ErrorStatusMax {
		return errors.Newf("XENO_ERROR_STATUS_MIN (%d) exceeds XENO_ERROR_STATUS_MAX (%d)",
			e.ErrorStatusMin, e.ErrorStatusMax)
	}

	if !strings.HasPrefix(e.ReadinessCheckPath, "/") || !strings.HasPrefix(e.MetricsPath, "/") {
		return errors.New("XENO_READINESS_CHECK_PATH and XENO_METRICS_PATH must start with a slash")
	}

	return nil
}

var _ Environment = BaseEnvironment{}

// ParseEnv parses environment variables into the given Environment type. The files listed in XENO_DOTENV, comma
// separated, are loaded first without overriding variables that are already set.
func ParseEnv[E Environment]() func() (E, error) {
	return func() (e E, err error) {
		if files := os.Getenv("XENO_DOTENV"); files != "" {
			if err := godotenv.Load(strings.Split(files, ",")...); err != nil {
				return e, errors.Wrap(err, "failed to load dotenv files")
			}
		}

		if err := env.Parse(&e); err != nil {
			return e, errors.Wrap(err, "failed to parse environment")
		}

		if err := e.base().Validate(); err != nil {
			return e, errors.Wrap(err, "invalid environment")
		}

		return e, nil
	}
}
