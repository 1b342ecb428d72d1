package xenoapp

import (
	"context"

	"github.com/advdv/xeno"
	"github.com/advdv/xeno/kv"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/carlmjohnson/requests"
	"go.uber.org/fx"
)

// App wraps an fx.App for lifecycle management.
type App struct {
	app *fx.App
}

// AppConfig holds configuration for the app.
type AppConfig struct {
	ServerConfig
	FxOptions []fx.Option
}

// Option configures the App.
type Option func(*AppConfig)

// runtimeProviderParams holds dependencies for Runtime.
type runtimeProviderParams[E Environment] struct {
	fx.In

	Env          E
	Ref          *appRef
	SecretReader SecretReader
	Store        kv.Store
	Requests     *requests.Builder
}

// WithAWSClient registers an AWS SDK v2 client for dependency injection.
// Clients are injected directly into handler constructors via fx:
//
//	xenoapp.WithAWSClient(func(cfg aws.Config) *dynamodb.Client {
//	    return dynamodb.NewFromConfig(cfg)
//	})
func WithAWSClient[T any](factory func(aws.Config) T) Option {
	return func(c *AppConfig) {
		c.FxOptions = append(c.FxOptions, AWSClientProvider(factory))
	}
}

// WithFx adds fx options for dependency injection.
func WithFx(fxOpts ...fx.Option) Option {
	return func(c *AppConfig) {
		c.FxOptions = append(c.FxOptions, fxOpts...)
	}
}

// WithHealthHandler sets a custom health check handler.
// If not set, a default handler returning 200 OK is used.
func WithHealthHandler(h xeno.HandlerFunc[xeno.Ctx]) Option {
	return func(c *AppConfig) {
		c.HealthHandler = h
	}
}

// FxOptions returns the fx options that make up the app's dependency graph. [NewApp] and the xenoapptest
// package both build on it.
func FxOptions[E Environment](routing any, opts ...Option) []fx.Option {
	var cfg AppConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	return append([]fx.Option{
		fx.NopLogger,
		fx.Provide(
			ParseEnv[E](),
			func(e E) Environment { return e },
			NewLogger,
			NewXenoLogger,
		),
		fx.Module("telemetry",
			fx.Provide(NewTracerProvider, NewPropagator, NewRegistry, NewMetrics),
		),
		fx.Module("aws",
			fx.Provide(provideAWSConfig, func(cfg aws.Config) (SecretReader, error) {
				return NewAWSSecretReader(cfg)
			}),
		),
		fx.Module("kv", fx.Provide(NewStore)),
		fx.Module("outbound",
			fx.Provide(NewHTTPTransport, NewHTTPClient, newRequestBuilder),
		),
		fx.Module("app",
			fx.Supply(cfg.ServerConfig),
			fx.Provide(
				NewBuilder,
				func() *appRef { return &appRef{} },
				buildApp,
				NewServer,
				func(p runtimeProviderParams[E]) *Runtime[E] {
					return newRuntime(p.Env, p.Ref, RuntimeParams{
						SecretReader: p.SecretReader,
						Store:        p.Store,
						Requests:     p.Requests,
					})
				},
			),
		),
		// routes must be registered before the server asks for the built app
		fx.Invoke(routing),
		fx.Invoke(startServerHook),
	}, cfg.FxOptions...)
}

// NewApp creates a batteries-included app with dependency injection.
//
// The routing function can request any types that are provided via fx options.
// At minimum, it should accept *xeno.Builder[xeno.Ctx] for routing.
//
// Example:
//
//	xenoapp.NewApp[Env](func(b *xeno.Builder[xeno.Ctx], h *Handlers) {
//	    b.Get("/items/:id", h.GetItem, "get-item")
//	},
//	    xenoapp.WithFx(fx.Provide(NewHandlers)),
//	).Run()
func NewApp[E Environment](routing any, opts ...Option) *App {
	return &App{
		app: fx.New(FxOptions[E](routing, opts...)...),
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() {
	a.app.Run()
}

// Err returns the error that occurred while constructing the dependency graph, if any.
func (a *App) Err() error {
	return a.app.Err()
}

// Start starts the application with the given context.
// It blocks until the context is done and then stops the application.
func (a *App) Start(ctx context.Context) error {
	if err := a.app.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), a.app.StopTimeout())
	defer cancel()

	return a.app.Stop(stopCtx)
}
