// Package xenoapp runs a xeno application as an HTTP service, typically behind AWS Lambda Web Adapter.
//
// # Overview
//
// xenoapp wires the ambient pieces of a service with [go.uber.org/fx]: environment parsing, structured
// logging, OpenTelemetry tracing, AWS SDK configuration, a key-value store, Prometheus metrics and graceful
// shutdown. Routing functions receive the [xeno.Builder] with the standard middleware already installed:
//
//	xenoapp.NewApp[Env](func(b *xeno.Builder[xeno.Ctx], h *Handlers) {
//	    b.Get("/items", h.ListItems)
//	    b.Get("/items/:id", h.GetItem, "get-item")
//	},
//	    xenoapp.WithAWSClient(func(cfg aws.Config) *sqs.Client { return sqs.NewFromConfig(cfg) }),
//	    xenoapp.WithFx(fx.Provide(NewHandlers)),
//	).Run()
//
// # Environment Configuration
//
// Define your environment by embedding [BaseEnvironment]:
//
//	type Env struct {
//	    xenoapp.BaseEnvironment
//	    QueueURL string `env:"QUEUE_URL,required"`
//	}
//
// BaseEnvironment reads the following variables:
//
//	| Variable                      | Required | Default  | Description                                        |
//	|-------------------------------|----------|----------|----------------------------------------------------|
//	| XENO_PORT                     | Yes      | -        | Port the HTTP server listens on                    |
//	| XENO_SERVICE_NAME             | Yes      | -        | Service name for logging, tracing and metrics      |
//	| XENO_READINESS_CHECK_PATH     | No       | /health  | Readiness route, registered as "health"            |
//	| XENO_LOG_LEVEL                | No       | info     | Log level (debug, info, warn, error)               |
//	| XENO_DEBUG_ERRORS             | No       | false    | Render verbose error messages                      |
//	| XENO_OTEL_EXPORTER            | No       | stdout   | Trace exporter: "stdout", "xrayudp" or "none"      |
//	| XENO_MAX_BODY_BYTES           | No       | 6290432  | Request body limit                                 |
//	| XENO_REQUEST_TIMEOUT          | No       | 0s       | Per-request deadline, 0 disables it                |
//	| XENO_LAMBDA_TIMEOUT           | No       | 30s      | Basis of the server timeouts                       |
//	| XENO_ERROR_STATUS_MIN/MAX     | No       | 500/599  | Statuses logged as failed requests                 |
//	| XENO_H2C                      | No       | false    | Serve HTTP/2 without TLS                           |
//	| XENO_METRICS_PATH             | No       | /metrics | Prometheus scrape endpoint                         |
//	| XENO_KV_BACKEND               | No       | memory   | memory, pebble, redis, dynamodb, s3 or ssm         |
//	| XENO_KV_PEBBLE_DIR            | pebble   | -        | Pebble data directory                              |
//	| XENO_KV_REDIS_ADDR            | redis    | -        | Redis address                                      |
//	| XENO_KV_REDIS_PASSWORD_SECRET | No       | -        | Secrets Manager reference "id#json.path"           |
//	| XENO_KV_TABLE                 | dynamodb | -        | DynamoDB table                                     |
//	| XENO_KV_BUCKET                | s3       | -        | S3 bucket                                          |
//	| XENO_KV_PREFIX                | No       | -        | Key prefix for redis, s3 and ssm                   |
//	| XENO_DOTENV                   | No       | -        | Comma separated dotenv files loaded first          |
//
// # Runtime
//
// [Runtime] provides app-scoped dependencies and should be injected into handler constructors:
//
//   - [Runtime.Env] returns the typed environment configuration
//   - [Runtime.Reverse] generates URLs for named routes
//   - [Runtime.Secret] retrieves secrets from AWS Secrets Manager
//   - [Runtime.KV] returns the configured store
//   - [Runtime.NewRequest] starts an instrumented outbound request
//
// Handlers that only need the store can also use the [xeno.Ctx] they are called with.
//
// # Request Scope
//
// The standard middleware make these available from the request context:
//
//   - [middleware.Log] - trace-correlated zap logger
//   - [middleware.RequestIDFrom] - the request id, echoed in the X-Request-Id response header
//   - [middleware.LWA] - Lambda execution context when running behind Lambda Web Adapter
//
// # Timeouts
//
// Server timeouts derive from XENO_LAMBDA_TIMEOUT, see [TimeoutConfig]. When the x-amzn-lambda-context header
// is present, each request gets the invocation deadline minus a 500ms buffer. A request that outlives its
// deadline is answered with 408.
//
// # Testing
//
// For integration tests that need the full DI graph, use the xenoapptest package:
//
//	xenoapptest.SetBaseEnv(t, 18081)
//	app := xenoapptest.New[Env](t, routing)
//	app.RequireStart()
//	t.Cleanup(app.RequireStop)
package xenoapp
