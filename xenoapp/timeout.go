package xenoapp

import (
	"time"

	"github.com/advdv/xeno/middleware"
)

// TimeoutConfig derives http.Server timeouts from the Lambda function timeout. Behind Lambda Web Adapter the
// client is a local proxy, so these are outer bounds only. Per-request deadlines taken from the
// x-amzn-lambda-context header take precedence, see [middleware.LambdaContext].
type TimeoutConfig struct {
	// LambdaTimeout is the configured Lambda function timeout from infrastructure.
	LambdaTimeout time.Duration

	// DeadlineBuffer is reserved for error responses and cleanup. Defaults to [middleware.DefaultDeadlineBuffer].
	DeadlineBuffer time.Duration
}

// ServerTimeouts returns the http.Server timeouts, each set to LambdaTimeout minus the buffer so the server gives
// up before Lambda hard-kills the function.
func (tc TimeoutConfig) ServerTimeouts() (readHeaderTimeout, readTimeout, writeTimeout, idleTimeout time.Duration) {
	buffer := tc.DeadlineBuffer
	if buffer <= 0 {
		buffer = middleware.DefaultDeadlineBuffer
	}

	timeout := tc.LambdaTimeout - buffer
	if timeout <= 0 {
		timeout = tc.LambdaTimeout // fallback if buffer >= timeout
	}

	// headers arrive quickly from a local proxy
	readHeaderTimeout = min(timeout, 5*time.Second)
	readTimeout = timeout
	writeTimeout = timeout
	idleTimeout = timeout

	return
}
