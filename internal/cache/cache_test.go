package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
)

const tagRates Tag = "Rates"

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}

func TestNewKey_Normalizes(t *testing.T) {
	if NewKey("history", 2) != NewKey("history", 2) {
		t.Fatalf("equal args must produce equal keys")
	}
	if NewKey("history", 2) == NewKey("history", 3) {
		t.Fatalf("different args must produce different keys")
	}
	if NewKey("rates").String() != "rates" {
		t.Fatalf("unexpected key string %q", NewKey("rates").String())
	}
}

func TestQuery_ConcurrentIdenticalKeysShareOneFetch(t *testing.T) {
	metrics := NewMetrics(prometheus.NewRegistry())
	c := New(zap.NewNop(), metrics)
	key := NewKey("rates")

	var calls int32
	release := make(chan struct{})
	fetch := func(ctx context.Context) ([]string, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return []string{"GBP", "ZAR"}, nil
	}

	const callers = 8
	results := make([][]string, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = Query(context.Background(), c, key, []Tag{tagRates}, fetch)
		}(i)
	}

	waitFor(t, func() bool {
		joined := testutil.ToFloat64(metrics.shared.WithLabelValues("rates"))
		started := testutil.ToFloat64(metrics.misses.WithLabelValues("rates"))
		return joined+started == callers
	})
	close(release)
	wg.Wait()

	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("expected exactly one fetch, got %d", n)
	}
	for i := 0; i < callers; i++ {
		if errs[i] != nil || len(results[i]) != 2 || results[i][0] != "GBP" {
			t.Fatalf("caller %d got %v, %v", i, results[i], errs[i])
		}
	}
}

func TestQuery_CachedUntilInvalidated(t *testing.T) {
	c := New(zap.NewNop(), nil)
	key := NewKey("history", 1)
	var calls int32
	fetch := func(ctx context.Context) (int32, error) {
		return atomic.AddInt32(&calls, 1), nil
	}

	first, _ := Query(context.Background(), c, key, []Tag{"Transaction"}, fetch)
	second, _ := Query(context.Background(), c, key, []Tag{"Transaction"}, fetch)
	if first != 1 || second != 1 {
		t.Fatalf("expected cached value 1, got %d then %d", first, second)
	}

	if n := c.Invalidate("Ads"); n != 0 {
		t.Fatalf("unrelated tag invalidated %d entries", n)
	}
	if v, _ := Query(context.Background(), c, key, []Tag{"Transaction"}, fetch); v != 1 {
		t.Fatalf("unrelated invalidation forced refetch")
	}

	if n := c.Invalidate("Transaction"); n != 1 {
		t.Fatalf("expected one invalidated entry, got %d", n)
	}
	if !c.State(key).Stale {
		t.Fatalf("expected stale entry after invalidation")
	}
	third, _ := Query(context.Background(), c, key, []Tag{"Transaction"}, fetch)
	if third != 2 {
		t.Fatalf("expected refetch after invalidation, got %d", third)
	}
}

func TestInvalidate_CoarseAcrossArguments(t *testing.T) {
	c := New(zap.NewNop(), nil)
	fetch := func(ctx context.Context) (string, error) { return "page", nil }
	for page := 1; page <= 3; page++ {
		_, _ = Query(context.Background(), c, NewKey("history", page), []Tag{"Transaction"}, fetch)
	}
	_, _ = Query(context.Background(), c, NewKey("detail", "abc"), []Tag{"Transaction"}, fetch)
	_, _ = Query(context.Background(), c, NewKey("ads"), []Tag{"Ads"}, fetch)

	if n := c.Invalidate("Transaction"); n != 4 {
		t.Fatalf("expected every Transaction entry invalidated, got %d", n)
	}
	if c.State(NewKey("ads")).Stale {
		t.Fatalf("Ads entry must stay fresh")
	}
}

func TestInvalidate_DetachesInflightFetch(t *testing.T) {
	c := New(zap.NewNop(), nil)
	key := NewKey("history", 1)

	var calls int32
	releaseOld := make(chan struct{})
	fetch := func(ctx context.Context) (string, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			<-releaseOld
			return "before-send", nil
		}
		return "after-send", nil
	}

	oldDone := make(chan string, 1)
	go func() {
		v, _ := Query(context.Background(), c, key, []Tag{"Transaction"}, fetch)
		oldDone <- v
	}()
	waitFor(t, func() bool { return atomic.LoadInt32(&calls) == 1 })

	c.Invalidate("Transaction")
	fresh, err := Query(context.Background(), c, key, []Tag{"Transaction"}, fetch)
	if err != nil || fresh != "after-send" {
		t.Fatalf("expected a new fetch after invalidation, got %q, %v", fresh, err)
	}

	close(releaseOld)
	if v := <-oldDone; v != "before-send" {
		t.Fatalf("old caller should receive its own response, got %q", v)
	}
}

func TestStore_DetachedResponseKeepsEntryStale(t *testing.T) {
	c := New(zap.NewNop(), nil)
	key := NewKey("rates")
	release := make(chan struct{})
	var calls int32
	fetch := func(ctx context.Context) (int32, error) {
		n := atomic.AddInt32(&calls, 1)
		if n == 1 {
			<-release
		}
		return n, nil
	}

	done := make(chan struct{})
	go func() {
		_, _ = Query(context.Background(), c, key, []Tag{tagRates}, fetch)
		close(done)
	}()
	waitFor(t, func() bool { return atomic.LoadInt32(&calls) == 1 })
	c.Invalidate(tagRates)
	close(release)
	<-done

	st := c.State(key)
	if !st.Stale || st.Data != int32(1) {
		t.Fatalf("expected stale entry holding detached response, got %+v", st)
	}
	if v, _ := Query(context.Background(), c, key, []Tag{tagRates}, fetch); v != 2 {
		t.Fatalf("expected refetch, got %d", v)
	}
}

func TestQuery_ErrorsAreNotServedAsFresh(t *testing.T) {
	c := New(zap.NewNop(), nil)
	key := NewKey("ads")
	var calls int32
	fetch := func(ctx context.Context) (string, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return "", errors.New("boom")
		}
		return "ok", nil
	}

	if _, err := Query(context.Background(), c, key, nil, fetch); err == nil {
		t.Fatalf("expected first fetch to fail")
	}
	if st := c.State(key); st.Err == nil || st.Loading {
		t.Fatalf("expected error state, got %+v", st)
	}
	v, err := Query(context.Background(), c, key, nil, fetch)
	if err != nil || v != "ok" {
		t.Fatalf("expected retry on next read, got %q, %v", v, err)
	}
	if st := c.State(key); st.Err != nil {
		t.Fatalf("expected error cleared, got %v", st.Err)
	}
}

func TestQuery_CancelledCallerDoesNotAbortFetch(t *testing.T) {
	c := New(zap.NewNop(), nil)
	key := NewKey("rates")
	release := make(chan struct{})
	var calls int32
	fetch := func(ctx context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "rates", nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := Query(ctx, c, key, []Tag{tagRates}, fetch)
		errCh <- err
	}()
	waitFor(t, func() bool { return atomic.LoadInt32(&calls) == 1 })
	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	close(release)
	waitFor(t, func() bool { return !c.State(key).Loading })

	v, err := Query(context.Background(), c, key, []Tag{tagRates}, fetch)
	if err != nil || v != "rates" || atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("expected cached result from uncancelled fetch, got %q, %v, calls=%d", v, err, atomic.LoadInt32(&calls))
	}
}

func TestReset_DropsEntriesAndInflightResults(t *testing.T) {
	c := New(zap.NewNop(), nil)
	key := NewKey("history", 1)
	release := make(chan struct{})
	var calls int32
	fetch := func(ctx context.Context) (string, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			<-release
			return "previous-user", nil
		}
		return "next-user", nil
	}

	done := make(chan struct{})
	go func() {
		_, _ = Query(context.Background(), c, key, nil, fetch)
		close(done)
	}()
	waitFor(t, func() bool { return atomic.LoadInt32(&calls) == 1 })
	c.Reset()
	close(release)
	<-done

	if st := c.State(key); st.Data != nil {
		t.Fatalf("expected result discarded after reset, got %+v", st)
	}
	if v, _ := Query(context.Background(), c, key, nil, fetch); v != "next-user" {
		t.Fatalf("expected fresh fetch after reset, got %q", v)
	}
}

func TestQuery_TypeMismatch(t *testing.T) {
	c := New(zap.NewNop(), nil)
	key := NewKey("rates")
	_, _ = Query(context.Background(), c, key, nil, func(ctx context.Context) (int, error) { return 1, nil })
	if _, err := Query(context.Background(), c, key, nil, func(ctx context.Context) (string, error) { return "", nil }); err == nil {
		t.Fatalf("expected type mismatch error")
	}
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.hit("x")
	m.miss("x")
	m.join("x")
	m.invalidated("x", 1)
}
