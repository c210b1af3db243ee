package progress

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IshaanNene/BrandLens/internal/config"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return mr, rdb
}

func testProgressConfig() config.ProgressConfig {
	cfg := config.DefaultConfig().Progress
	cfg.TTL = time.Hour
	return cfg
}

func TestRedisReporterStoresSnapshot(t *testing.T) {
	mr, rdb := setupRedis(t)
	r := NewRedisReporterFromClient(rdb, testProgressConfig(), testLogger)

	ctx := context.Background()
	r.Report(ctx, Event{JobID: "job-1", Completed: 1, Total: 3, Brand: "acme.com", Status: StatusSucceeded})
	r.Report(ctx, Event{JobID: "job-1", Completed: 2, Total: 3, Brand: "globex.com", Status: StatusFailed})

	raw, err := mr.Get("brandlens:job:job-1")
	require.NoError(t, err)

	var got Event
	require.NoError(t, json.Unmarshal([]byte(raw), &got))
	assert.Equal(t, 2, got.Completed)
	assert.Equal(t, "globex.com", got.Brand)
	assert.Equal(t, StatusFailed, got.Status)
	assert.Equal(t, time.Hour, mr.TTL("brandlens:job:job-1"))
}

func TestRedisReporterPublishes(t *testing.T) {
	_, rdb := setupRedis(t)
	cfg := testProgressConfig()
	r := NewRedisReporterFromClient(rdb, cfg, testLogger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sub := rdb.Subscribe(ctx, cfg.Channel)
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	r.Report(ctx, Event{JobID: "job-2", Completed: 0, Total: 1, Brand: "acme.com", Stage: "fetch", Status: StatusRunning})

	select {
	case msg := <-sub.Channel():
		var got Event
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		assert.Equal(t, "fetch", got.Stage)
		assert.Equal(t, "job-2", got.JobID)
	case <-ctx.Done():
		t.Fatal("no message published")
	}
}

func TestRedisReporterSwallowsErrors(t *testing.T) {
	mr, rdb := setupRedis(t)
	r := NewRedisReporterFromClient(rdb, testProgressConfig(), testLogger)
	mr.Close()

	assert.NotPanics(t, func() {
		r.Report(context.Background(), Event{JobID: "job-3", Brand: "acme.com", Status: StatusSucceeded})
	})
}

func TestNewRedisReporterPing(t *testing.T) {
	mr, _ := setupRedis(t)
	cfg := testProgressConfig()
	cfg.RedisAddr = mr.Addr()

	r, err := NewRedisReporter(context.Background(), cfg, testLogger)
	require.NoError(t, err)
	assert.Equal(t, "brandlens:job:abc", r.Key("abc"))
	assert.NoError(t, r.Close())

	cfg.RedisAddr = "127.0.0.1:1"
	_, err = NewRedisReporter(context.Background(), cfg, testLogger)
	assert.Error(t, err)
}

func TestMultiAndFunc(t *testing.T) {
	var mu sync.Mutex
	var got []string
	rec := func(tag string) Reporter {
		return Func(func(_ context.Context, ev Event) {
			mu.Lock()
			defer mu.Unlock()
			got = append(got, tag+":"+ev.Brand)
		})
	}

	m := Multi{rec("a"), nil, Nop{}, rec("b"), NewLogReporter(testLogger)}
	m.Report(context.Background(), Event{Brand: "acme.com", Status: StatusSucceeded})
	assert.Equal(t, []string{"a:acme.com", "b:acme.com"}, got)
}

func TestEventDone(t *testing.T) {
	assert.False(t, Event{Status: StatusRunning}.Done())
	assert.True(t, Event{Status: StatusSucceeded}.Done())
	assert.True(t, Event{Status: StatusFailed}.Done())
}
