// Command xeno-hello-lambda serves a xeno app directly from API Gateway, HTTP API and Function URL events.
package main

import (
	"context"
	"log"
	"os"

	"github.com/advdv/xeno"
	"github.com/advdv/xeno/adapter/lambda"
	"github.com/advdv/xeno/kv/memkv"
	"github.com/advdv/xeno/middleware"
	"github.com/advdv/xeno/xenoapp"
	"github.com/aws-observability/aws-otel-go/exporters/xrayudp"
	"go.opentelemetry.io/contrib/propagators/aws/xray"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

func main() {
	logs, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}

	exporter, err := xrayudp.NewSpanExporter(context.Background())
	if err != nil {
		logs.Fatal("failed to create span exporter", zap.Error(err))
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)),
		sdktrace.WithIDGenerator(xray.NewIDGenerator()),
	)

	app := xeno.New(xeno.NewCtx().WithKV(memkv.New()),
		xeno.WithLogger(xenoapp.NewXenoLogger(logs)),
		xeno.WithDebugErrors(os.Getenv("XENO_DEBUG_ERRORS") == "true"),
	).Use(
		middleware.RequestID[xeno.Ctx](""),
		middleware.Trace[xeno.Ctx](tp, xray.Propagator{}),
		middleware.Logger[xeno.Ctx](logs),
		middleware.AccessLog[xeno.Ctx](logs, nil),
		middleware.BodyLimit[xeno.Ctx](xenoapp.LambdaMaxResponsePayloadBytes),
	).Get("/", func(xeno.Ctx, *xeno.Request) (*xeno.Response, error) {
		return xeno.Text("Hello, World!"), nil
	}, "index").Get("/hello/:name", func(_ xeno.Ctx, r *xeno.Request) (*xeno.Response, error) {
		middleware.Log(r.Context()).Info("greeting", zap.String("name", r.Param("name")))
		return xeno.JSON(map[string]string{"greeting": "Hello, " + r.Param("name") + "!"}), nil
	}, "hello").MustBuild()

	lambda.New(app).Start()
}
