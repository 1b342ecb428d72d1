package sqsworker_test

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/advdv/xeno"
	"github.com/advdv/xeno/adapter/sqsworker"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeQueue struct {
	mu       sync.Mutex
	batches  [][]types.Message
	deleted  []string
	failNext error
}

func (q *fakeQueue) ReceiveMessage(_ context.Context, _ *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.failNext != nil {
		err := q.failNext
		q.failNext = nil
		return nil, err
	}

	if len(q.batches) == 0 {
		return &sqs.ReceiveMessageOutput{}, nil
	}

	batch := q.batches[0]
	q.batches = q.batches[1:]

	return &sqs.ReceiveMessageOutput{Messages: batch}, nil
}

func (q *fakeQueue) DeleteMessage(_ context.Context, in *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.deleted = append(q.deleted, aws.ToString(in.ReceiptHandle))

	return &sqs.DeleteMessageOutput{}, nil
}

func (q *fakeQueue) deletedHandles() []string {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := append([]string(nil), q.deleted...)
	sort.Strings(out)

	return out
}

func message(t *testing.T, id string, m sqsworker.Message) types.Message {
	t.Helper()

	body, err := json.Marshal(m)
	require.NoError(t, err)

	return types.Message{MessageId: aws.String(id), ReceiptHandle: aws.String("rh-" + id), Body: aws.String(string(body))}
}

type recorded struct {
	mu   sync.Mutex
	seen map[string]string
}

func newApp(rec *recorded) *xeno.App[struct{}] {
	return xeno.New(struct{}{}).
		Post("/orders/:id", func(_ struct{}, r *xeno.Request) (*xeno.Response, error) {
			rec.mu.Lock()
			defer rec.mu.Unlock()
			rec.seen[r.Param("id")] = string(r.Body) + "|" + r.Query().Get("dry") + "|" +
				r.Header.Get("X-Tenant") + "|" + r.Header.Get(xeno.DefaultRequestIDHeader)

			if r.Param("id") == "broken" {
				return xeno.Text("down").WithStatus(http.StatusServiceUnavailable), nil
			}

			return xeno.NoContent(http.StatusAccepted), nil
		}).
		MustBuild()
}

func TestPoll(t *testing.T) {
	rec := &recorded{seen: map[string]string{}}
	q := &fakeQueue{batches: [][]types.Message{{
		message(t, "m1", sqsworker.Message{
			Method: "POST", Path: "/orders/1", Query: "dry=1",
			Headers: http.Header{"X-Tenant": {"acme"}}, Body: []byte(`{"qty":2}`),
		}),
		message(t, "m2", sqsworker.Message{Method: "POST", Path: "/orders/broken"}),
		message(t, "m3", sqsworker.Message{Method: "POST", Path: "/nope"}),
		{MessageId: aws.String("m4"), ReceiptHandle: aws.String("rh-m4"), Body: aws.String("not json")},
		message(t, "m5", sqsworker.Message{
			Method: "POST", Path: "/orders/5", Headers: http.Header{xeno.DefaultRequestIDHeader: {"given"}},
		}),
	}}}

	core, logs := observer.New(zapcore.InfoLevel)
	w := sqsworker.New(q, "https://sqs.local/queue", newApp(rec), sqsworker.WithLogger(zap.New(core)))

	n, err := w.Poll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	assert.Equal(t, []string{"rh-m1", "rh-m3", "rh-m4", "rh-m5"}, q.deletedHandles())
	assert.Equal(t, `{"qty":2}|1|acme|m1`, rec.seen["1"])
	assert.Equal(t, "|||given", rec.seen["5"])
	assert.Equal(t, 1, logs.FilterMessage("leaving message for redelivery").Len())
	assert.Equal(t, 1, logs.FilterMessage("dropping undecodable message").Len())
}

func TestProcessRejectsIncompleteMessage(t *testing.T) {
	w := sqsworker.New(&fakeQueue{}, "q", newApp(&recorded{seen: map[string]string{}}))

	_, err := w.Process(context.Background(), "", []byte(`{"method":"GET"}`))
	require.EqualError(t, err, "message has no method or path")

	res, err := w.Process(context.Background(), "", []byte(`{"method":"GET","path":"/orders/1"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusMethodNotAllowed, res.Status)
}

func TestRunRetriesAndStops(t *testing.T) {
	rec := &recorded{seen: map[string]string{}}
	q := &fakeQueue{
		failNext: errors.New("throttled"),
		batches:  [][]types.Message{{message(t, "m1", sqsworker.Message{Method: "POST", Path: "/orders/9"})}},
	}

	core, logs := observer.New(zapcore.InfoLevel)
	w := sqsworker.New(q, "q", newApp(rec),
		sqsworker.WithLogger(zap.New(core)),
		sqsworker.WithRetryDelay(time.Millisecond),
		sqsworker.WithWaitTime(1),
		sqsworker.WithMaxMessages(5),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool { return len(q.deletedHandles()) == 1 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}

	assert.Equal(t, 1, logs.FilterMessage("failed to poll queue").Len())
}
