// Package sqsworker dispatches requests carried by SQS messages. Each message body is a JSON document:
//
//	{"method": "POST", "path": "/orders", "query": "dry=1", "headers": {"X-Tenant": ["a"]}, "body": "eyJpZCI6MX0="}
//
// where body is base64 encoded. Messages whose response is not a server error are deleted, the others are left on
// the queue for redelivery.
package sqsworker

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/advdv/xeno"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// API is the part of the SQS client the worker uses.
type API interface {
	ReceiveMessage(ctx context.Context, in *sqs.ReceiveMessageInput, opts ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, in *sqs.DeleteMessageInput, opts ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// Message is the request encoded in a message body.
type Message struct {
	Method  string      `json:"method"`
	Path    string      `json:"path"`
	Query   string      `json:"query,omitempty"`
	Headers http.Header `json:"headers,omitempty"`
	Body    []byte      `json:"body,omitempty"`
}

// Option configures the worker.
type Option func(*Worker)

// WithLogger sets the logger, it defaults to a no-op logger.
func WithLogger(logs *zap.Logger) Option {
	return func(w *Worker) { w.logs = logs }
}

// WithWaitTime sets the long-poll duration in seconds, at most 20.
func WithWaitTime(seconds int32) Option {
	return func(w *Worker) { w.waitTime = min(seconds, 20) }
}

// WithMaxMessages sets how many messages are received per poll, at most 10.
func WithMaxMessages(n int32) Option {
	return func(w *Worker) { w.maxMessages = min(max(n, 1), 10) }
}

// WithRetryDelay sets how long the worker waits after a failed receive.
func WithRetryDelay(d time.Duration) Option {
	return func(w *Worker) { w.retryDelay = d }
}

// Worker polls a queue and dispatches every message to the application.
type Worker struct {
	api         API
	queueURL    string
	app         xeno.Dispatcher
	logs        *zap.Logger
	waitTime    int32
	maxMessages int32
	retryDelay  time.Duration
}

// New creates a worker for the queue at queueURL.
func New(api API, queueURL string, app xeno.Dispatcher, opts ...Option) *Worker {
	w := &Worker{
		api:         api,
		queueURL:    queueURL,
		app:         app,
		logs:        zap.NewNop(),
		waitTime:    20,
		maxMessages: 10,
		retryDelay:  time.Second,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Run polls until ctx is done. Receive failures are logged and retried after the retry delay.
func (w *Worker) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		if _, err := w.Poll(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}

			w.logs.Error("failed to poll queue", zap.String("queue_url", w.queueURL), zap.Error(err))

			select {
			case <-ctx.Done():
				return nil
			case <-time.After(w.retryDelay):
			}
		}
	}
}

// Poll receives one batch and processes its messages concurrently. It returns the number of messages received.
func (w *Worker) Poll(ctx context.Context) (int, error) {
	out, err := w.api.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(w.queueURL),
		MaxNumberOfMessages: w.maxMessages,
		WaitTimeSeconds:     w.waitTime,
	})
	if err != nil {
		return 0, errors.Wrap(err, "failed to receive messages")
	}

	var wg sync.WaitGroup
	for _, msg := range out.Messages {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.handle(ctx, msg)
		}()
	}

	wg.Wait()

	return len(out.Messages), nil
}

func (w *Worker) handle(ctx context.Context, msg types.Message) {
	logs := w.logs.With(zap.String("message_id", aws.ToString(msg.MessageId)))

	res, err := w.Process(ctx, aws.ToString(msg.MessageId), []byte(aws.ToString(msg.Body)))
	if err != nil {
		logs.Error("dropping undecodable message", zap.Error(err))
	} else if res.Status >= http.StatusInternalServerError {
		logs.Warn("leaving message for redelivery", zap.Int("status", res.Status))
		return
	}

	if _, err := w.api.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(w.queueURL),
		ReceiptHandle: msg.ReceiptHandle,
	}); err != nil {
		logs.Error("failed to delete message", zap.Error(err))
	}
}

// Process decodes one message body and dispatches it. The message id becomes the request id unless the message
// carries one. It fails only when the body cannot be decoded.
func (w *Worker) Process(ctx context.Context, id string, body []byte) (*xeno.Response, error) {
	var m Message
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, errors.Wrap(err, "failed to decode message")
	}

	if m.Method == "" || m.Path == "" {
		return nil, errors.New("message has no method or path")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	req := xeno.NewRequestWithContext(ctx, m.Method, "/", m.Body)
	req.Path = m.Path
	req.RawQuery = m.Query

	for k, vs := range m.Headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	if id != "" && req.Header.Get(xeno.DefaultRequestIDHeader) == "" {
		req.Header.Set(xeno.DefaultRequestIDHeader, id)
	}

	return w.app.Handle(req), nil
}

var _ API = (*sqs.Client)(nil)
