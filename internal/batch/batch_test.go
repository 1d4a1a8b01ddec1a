package batch

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/signalsfoundry/longitude/core"
	"github.com/signalsfoundry/longitude/internal/logging"
	"github.com/signalsfoundry/longitude/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

var errBoom = errors.New("boom")

// hoursMeasurer returns the range length in hours, failing for body "bad".
type hoursMeasurer struct {
	inFlight, peak atomic.Int32
	ids            sync.Map
}

func (m *hoursMeasurer) Measure(ctx context.Context, req core.Request) (float64, error) {
	n := m.inFlight.Add(1)
	defer m.inFlight.Add(-1)
	for {
		p := m.peak.Load()
		if n <= p || m.peak.CompareAndSwap(p, n) {
			break
		}
	}
	m.ids.Store(logging.RequestIDFromContext(ctx), struct{}{})
	time.Sleep(2 * time.Millisecond)
	if req.Body == "bad" {
		return 0, errBoom
	}
	return req.End.Sub(req.Start).Hours(), nil
}

type recorder struct {
	mu              sync.Mutex
	started, failed int
	finished        int
}

func (r *recorder) JobStarted() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started++
}

func (r *recorder) JobFinished(_ time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finished++
	if err != nil {
		r.failed++
	}
}

func requests(n int) []core.Request {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	reqs := make([]core.Request, n)
	for i := range reqs {
		reqs[i] = core.Request{Body: "mars", Start: base, End: base.Add(time.Duration(i) * time.Hour)}
	}
	return reqs
}

func TestRunKeepsOrderAndBoundsWorkers(t *testing.T) {
	defer goleak.VerifyNone(t)

	m := &hoursMeasurer{}
	rec := &recorder{}
	runner := NewRunner(m, WithWorkers(3), WithRecorder(rec))

	reqs := requests(20)
	reqs[7].Body = "bad"

	results, err := runner.Run(context.Background(), reqs)
	require.NoError(t, err)
	require.Len(t, results, len(reqs))

	for i, res := range results {
		assert.Equal(t, reqs[i], res.Request)
		assert.NotEmpty(t, res.ID)
		if i == 7 {
			assert.ErrorIs(t, res.Err, errBoom)
			continue
		}
		assert.NoError(t, res.Err)
		assert.Equal(t, float64(i), res.Degrees)
	}

	assert.LessOrEqual(t, m.peak.Load(), int32(3))
	assert.Equal(t, 20, rec.started)
	assert.Equal(t, 20, rec.finished)
	assert.Equal(t, 1, rec.failed)

	distinct := 0
	m.ids.Range(func(k, _ any) bool {
		if k.(string) != "" {
			distinct++
		}
		return true
	})
	assert.Equal(t, 20, distinct, "each job should carry its own measurement id")
}

func TestRunCancelled(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRunner(&hoursMeasurer{}, WithWorkers(2)).Run(ctx, requests(5))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunEmpty(t *testing.T) {
	results, err := NewRunner(&hoursMeasurer{}).Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestReadRequests(t *testing.T) {
	in := "policy,body,start,end,note\n" +
		"count-positive,mars,2024-01-01T00:00:00Z,2024-06-01T00:00:00Z,x\n" +
		",venus, 2024-02-01T00:00:00Z,2024-01-01T00:00:00Z,\n"

	frame := model.Frame{Zodiac: model.Sidereal}
	reqs, err := ReadRequests(strings.NewReader(in), frame)
	require.NoError(t, err)
	require.Len(t, reqs, 2)

	assert.Equal(t, "mars", reqs[0].Body)
	assert.Equal(t, model.CountPositive, reqs[0].Policy)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), reqs[0].End)
	assert.Equal(t, frame, reqs[0].Frame)
	assert.Equal(t, model.ZeroOut, reqs[1].Policy)
}

func TestReadRequestsErrors(t *testing.T) {
	_, err := ReadRequests(strings.NewReader("body,start,end\n"), model.DefaultFrame)
	assert.ErrorIs(t, err, ErrBadHeader)

	_, err = ReadRequests(strings.NewReader("body,start,end,policy\nmars,yesterday,2024-01-01T00:00:00Z,\n"), model.DefaultFrame)
	assert.ErrorContains(t, err, "line 2: start")

	_, err = ReadRequests(strings.NewReader("body,start,end,policy\nmars,2024-01-01T00:00:00Z,2024-01-02T00:00:00Z,all\n"), model.DefaultFrame)
	assert.Error(t, err)
}

func TestWriteResults(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	results := []Result{
		{Request: core.Request{Body: "sun", Start: start, End: start.Add(24 * time.Hour), Policy: model.CountNegative}, Degrees: 0.9856},
		{Request: core.Request{Body: "x", Start: start, End: start}, Err: errBoom},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteResults(&buf, results))
	assert.Equal(t,
		"body,start,end,policy,degrees,error\n"+
			"sun,2024-01-01T00:00:00Z,2024-01-02T00:00:00Z,count-negative,0.9856,\n"+
			"x,2024-01-01T00:00:00Z,2024-01-01T00:00:00Z,zero-out,,boom\n",
		buf.String())
}
