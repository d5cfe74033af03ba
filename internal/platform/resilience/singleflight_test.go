package resilience

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSingleFlight_Do(t *testing.T) {
	var g SingleFlight[[]byte]
	var counter int32

	const workers = 20
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			out, err, _ := g.Do("eventsnext:133612", func() ([]byte, error) {
				atomic.AddInt32(&counter, 1)
				time.Sleep(20 * time.Millisecond)
				return []byte(`{"events":[]}`), nil
			})
			if err != nil {
				t.Errorf("singleflight call failed: %v", err)
			}
			if string(out) != `{"events":[]}` {
				t.Errorf("unexpected payload: %s", out)
			}
		}()
	}

	close(start)
	wg.Wait()

	if got := atomic.LoadInt32(&counter); got != 1 {
		t.Fatalf("expected function to run once, got %d", got)
	}
}

func TestSingleFlight_ForgetsKeyAfterError(t *testing.T) {
	var g SingleFlight[int]
	boom := errors.New("boom")

	if _, err, shared := g.Do("k", func() (int, error) { return 0, boom }); !errors.Is(err, boom) || shared {
		t.Fatalf("unexpected first call result: err=%v shared=%v", err, shared)
	}

	got, err, _ := g.Do("k", func() (int, error) { return 7, nil })
	if err != nil || got != 7 {
		t.Fatalf("expected fresh call after error, got %d %v", got, err)
	}
}
