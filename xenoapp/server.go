package xenoapp

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/advdv/xeno"
	"github.com/advdv/xeno/adapter/stdhttp"
	"github.com/advdv/xeno/kv"
	"github.com/advdv/xeno/middleware"
	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// HealthRouteName is the route name of the readiness check.
const HealthRouteName = "health"

// ServerConfig holds optional configuration for the HTTP server.
type ServerConfig struct {
	HealthHandler xeno.HandlerFunc[xeno.Ctx]
}

// BuilderParams holds the dependencies for assembling the app.
type BuilderParams struct {
	fx.In

	Env        Environment
	Logger     *zap.Logger
	XenoLogger xeno.Logger
	Store      kv.Store
	Metrics    *middleware.Metrics[xeno.Ctx]
}

// NewBuilder creates the app builder with the ambient middleware installed and the readiness route registered.
// Routing functions add their routes to it before the app is built.
func NewBuilder(params BuilderParams, cfg ServerConfig) *xeno.Builder[xeno.Ctx] {
	env := params.Env.base()

	b := xeno.New(xeno.NewCtx().WithKV(params.Store),
		xeno.WithLogger(params.XenoLogger),
		xeno.WithDebugErrors(env.DebugErrors),
	)

	b.Use(
		middleware.RequestID[xeno.Ctx](""),
		middleware.Logger[xeno.Ctx](params.Logger),
		middleware.AccessLog[xeno.Ctx](params.Logger, middleware.StatusRange(env.ErrorStatusMin, env.ErrorStatusMax)),
		middleware.BodyLimit[xeno.Ctx](env.MaxBodyBytes),
		middleware.LambdaContext[xeno.Ctx](middleware.DefaultDeadlineBuffer),
		middleware.Deadline[xeno.Ctx](env.RequestTimeout),
		params.Metrics,
	)

	health := cfg.HealthHandler
	if health == nil {
		health = defaultHealthHandler
	}

	return b.Get(env.ReadinessCheckPath, health, HealthRouteName)
}

// appRef gives the runtime access to the app once it has been built, handler constructors depend on the runtime
// before routing has finished.
type appRef struct {
	app *xeno.App[xeno.Ctx]
}

func buildApp(b *xeno.Builder[xeno.Ctx], ref *appRef) (*xeno.App[xeno.Ctx], error) {
	app, err := b.Build()
	if err != nil {
		return nil, errors.Wrap(err, "failed to build app")
	}

	ref.app = app

	return app, nil
}

// ServerParams holds the dependencies for creating an HTTP server.
type ServerParams struct {
	fx.In

	Env        Environment
	App        *xeno.App[xeno.Ctx]
	Registry   *prometheus.Registry
	TracerProv trace.TracerProvider
	Propagator propagation.TextMapPropagator
}

// NewServer creates an HTTP server that serves the app, with the metrics endpoint next to it.
func NewServer(params ServerParams) *http.Server {
	env := params.Env.base()

	opts := []stdhttp.Option{stdhttp.WithMaxBodyBytes(env.MaxBodyBytes)}
	if env.H2C {
		opts = append(opts, stdhttp.WithH2C())
	}

	mux := http.NewServeMux()
	mux.Handle(env.MetricsPath, newMetricsHandler(params.Registry))
	mux.Handle("/", stdhttp.New(params.App, opts...))

	// probes and scrapes stay untraced
	handler := traceHandler(mux, params.TracerProv, params.Propagator, env.ServiceName,
		env.ReadinessCheckPath, env.MetricsPath)

	tc := TimeoutConfig{LambdaTimeout: env.LambdaTimeout}
	readHeaderTimeout, readTimeout, writeTimeout, idleTimeout := tc.ServerTimeouts()

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", env.Port),
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
}

// startServerHook registers lifecycle hooks for the HTTP server. The listener is opened on start so that a port
// conflict fails the app instead of being logged from the serving goroutine.
func startServerHook(lc fx.Lifecycle, server *http.Server, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			var lcfg net.ListenConfig
			ln, err := lcfg.Listen(ctx, "tcp", server.Addr)
			if err != nil {
				return errors.Wrapf(err, "failed to listen on %s", server.Addr)
			}

			logger.Info("starting server", zap.String("addr", server.Addr))
			go func() {
				if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("server error", zap.Error(err))
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping server")
			return server.Shutdown(ctx)
		},
	})
}

func defaultHealthHandler(xeno.Ctx, *xeno.Request) (*xeno.Response, error) {
	return xeno.NoContent(http.StatusOK), nil
}
