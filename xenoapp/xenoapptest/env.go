package xenoapptest

import (
	"strconv"
	"testing"
)

// Env provides a chainable builder for setting [xenoapp.BaseEnvironment] env vars
// via t.Setenv. Create one with [SetBaseEnv].
type Env struct {
	t testing.TB
}

// SetBaseEnv sets the [xenoapp.BaseEnvironment] env vars to test defaults.
// Port is required because each test must use a unique port to avoid collisions.
//
// Defaults:
//   - XENO_SERVICE_NAME: "test"
//   - XENO_READINESS_CHECK_PATH: "/health"
//   - XENO_OTEL_EXPORTER: "none"
//   - XENO_LAMBDA_TIMEOUT: "30s"
//   - XENO_KV_BACKEND: "memory"
//   - AWS_REGION: "us-east-1"
//   - OTEL_SDK_DISABLED: "true"
//   - AWS_ACCESS_KEY_ID: "test"
//   - AWS_SECRET_ACCESS_KEY: "test"
//
// Use the returned [Env] to override individual values:
//
//	xenoapptest.SetBaseEnv(t, 18085).ServiceName("orders").KVBackend("pebble")
func SetBaseEnv(t testing.TB, port int) *Env {
	t.Helper()
	t.Setenv("XENO_PORT", strconv.Itoa(port))
	t.Setenv("XENO_SERVICE_NAME", "test")
	t.Setenv("XENO_READINESS_CHECK_PATH", "/health")
	t.Setenv("XENO_OTEL_EXPORTER", "none")
	t.Setenv("XENO_LAMBDA_TIMEOUT", "30s")
	t.Setenv("XENO_KV_BACKEND", "memory")
	t.Setenv("AWS_REGION", "us-east-1")
	t.Setenv("OTEL_SDK_DISABLED", "true")
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")
	return &Env{t: t}
}

// ServiceName overrides XENO_SERVICE_NAME.
func (e *Env) ServiceName(name string) *Env {
	e.t.Helper()
	e.t.Setenv("XENO_SERVICE_NAME", name)
	return e
}

// ReadinessCheckPath overrides XENO_READINESS_CHECK_PATH.
func (e *Env) ReadinessCheckPath(path string) *Env {
	e.t.Helper()
	e.t.Setenv("XENO_READINESS_CHECK_PATH", path)
	return e
}

// AWSRegion overrides AWS_REGION.
func (e *Env) AWSRegion(region string) *Env {
	e.t.Helper()
	e.t.Setenv("AWS_REGION", region)
	return e
}

// LambdaTimeout overrides XENO_LAMBDA_TIMEOUT.
func (e *Env) LambdaTimeout(d string) *Env {
	e.t.Helper()
	e.t.Setenv("XENO_LAMBDA_TIMEOUT", d)
	return e
}

// RequestTimeout overrides XENO_REQUEST_TIMEOUT.
func (e *Env) RequestTimeout(d string) *Env {
	e.t.Helper()
	e.t.Setenv("XENO_REQUEST_TIMEOUT", d)
	return e
}

// MaxBodyBytes overrides XENO_MAX_BODY_BYTES.
func (e *Env) MaxBodyBytes(n int64) *Env {
	e.t.Helper()
	e.t.Setenv("XENO_MAX_BODY_BYTES", strconv.FormatInt(n, 10))
	return e
}

// KVBackend overrides XENO_KV_BACKEND.
func (e *Env) KVBackend(name string) *Env {
	e.t.Helper()
	e.t.Setenv("XENO_KV_BACKEND", name)
	return e
}

// KVPebbleDir overrides XENO_KV_PEBBLE_DIR.
func (e *Env) KVPebbleDir(dir string) *Env {
	e.t.Helper()
	e.t.Setenv("XENO_KV_PEBBLE_DIR", dir)
	return e
}

// H2C overrides XENO_H2C.
func (e *Env) H2C(on bool) *Env {
	e.t.Helper()
	e.t.Setenv("XENO_H2C", strconv.FormatBool(on))
	return e
}
