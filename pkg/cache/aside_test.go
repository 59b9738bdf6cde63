package cache

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type payload struct {
	Symbol string `json:"symbol"`
	Value  int    `json:"value"`
}

func TestGetOrComputeMissThenHit(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()
	defer mc.Close()
	aside := NewAside(mc)

	computes := 0
	compute := func(ctx context.Context) (payload, error) {
		computes++
		return payload{Symbol: "BTCUSDT", Value: 42}, nil
	}

	got, err := GetOrCompute(ctx, aside, "k1", time.Minute, compute)
	if err != nil {
		t.Fatalf("get or compute: %v", err)
	}
	if got.Value != 42 {
		t.Fatalf("unexpected value %d", got.Value)
	}
	if computes != 1 {
		t.Fatalf("expected 1 compute, got %d", computes)
	}

	got, err = GetOrCompute(ctx, aside, "k1", time.Minute, compute)
	if err != nil {
		t.Fatalf("get or compute: %v", err)
	}
	if got.Symbol != "BTCUSDT" || got.Value != 42 {
		t.Fatalf("cached value mismatch: %+v", got)
	}
	if computes != 1 {
		t.Fatalf("expected cache hit, computes=%d", computes)
	}
}

func TestGetOrComputeObserve(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()
	defer mc.Close()

	outcomes := map[string]int{}
	aside := NewAside(mc, WithAsideObserve(func(op, result string) {
		outcomes[result]++
	}))

	compute := func(ctx context.Context) (int, error) { return 1, nil }
	for i := 0; i < 3; i++ {
		if _, err := GetOrCompute(ctx, aside, "k", time.Minute, compute); err != nil {
			t.Fatalf("get or compute: %v", err)
		}
	}
	if outcomes["miss"] != 1 || outcomes["hit"] != 2 {
		t.Fatalf("expected 1 miss and 2 hits, got %v", outcomes)
	}
}

func TestGetOrComputeNilAside(t *testing.T) {
	ctx := context.Background()
	var aside *Aside

	got, err := GetOrCompute(ctx, aside, "k", time.Minute, func(ctx context.Context) (int, error) {
		return 7, nil
	})
	if err != nil {
		t.Fatalf("get or compute: %v", err)
	}
	if got != 7 {
		t.Fatalf("expected 7, got %d", got)
	}
}

func TestGetOrComputeDisabled(t *testing.T) {
	ctx := context.Background()
	aside := NewAside(nil)

	computes := 0
	for i := 0; i < 3; i++ {
		got, err := GetOrCompute(ctx, aside, "k", time.Minute, func(ctx context.Context) (int, error) {
			computes++
			return computes, nil
		})
		if err != nil {
			t.Fatalf("get or compute: %v", err)
		}
		if got != computes {
			t.Fatalf("expected fresh compute each call")
		}
	}
	if computes != 3 {
		t.Fatalf("expected 3 computes, got %d", computes)
	}
}

func TestGetOrComputeComputeError(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()
	defer mc.Close()
	aside := NewAside(mc)

	wantErr := errors.New("upstream down")
	_, err := GetOrCompute(ctx, aside, "k", time.Minute, func(ctx context.Context) (int, error) {
		return 0, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected compute error, got %v", err)
	}
}

// failingStore errors on every operation, standing in for an
// unreachable Redis.
type failingStore struct{}

var errStoreDown = errors.New("store down")

func (failingStore) Set(context.Context, string, interface{}, time.Duration) error {
	return errStoreDown
}
func (failingStore) Get(context.Context, string, interface{}) error { return errStoreDown }
func (failingStore) Delete(context.Context, ...string) error        { return errStoreDown }
func (failingStore) DeleteByPattern(context.Context, string) error  { return errStoreDown }
func (failingStore) Exists(context.Context, ...string) (bool, error) {
	return false, errStoreDown
}
func (failingStore) Increment(context.Context, string) (int64, error) { return 0, errStoreDown }
func (failingStore) Expire(context.Context, string, time.Duration) (bool, error) {
	return false, errStoreDown
}
func (failingStore) MSet(context.Context, map[string]interface{}, time.Duration) error {
	return errStoreDown
}
func (failingStore) MGet(context.Context, ...string) (map[string]string, error) {
	return nil, errStoreDown
}
func (failingStore) TryLock(context.Context, string, time.Duration) (bool, error) {
	return false, errStoreDown
}
func (failingStore) Unlock(context.Context, string) error { return errStoreDown }

func TestGetOrComputeStoreFailure(t *testing.T) {
	ctx := context.Background()
	warns := 0
	aside := NewAside(failingStore{}, WithAsideWarn(func(op, key string, err error) {
		warns++
	}))

	for i := 0; i < 5; i++ {
		got, err := GetOrCompute(ctx, aside, "k", time.Minute, func(ctx context.Context) (string, error) {
			return "fresh", nil
		})
		if err != nil {
			t.Fatalf("store failure must not fail the request: %v", err)
		}
		if got != "fresh" {
			t.Fatalf("expected computed value, got %q", got)
		}
	}
	// One warning per incident, not one per request.
	if warns != 1 {
		t.Fatalf("expected 1 warning, got %d", warns)
	}
}

func TestGetOrComputeCorruptEntry(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()
	defer mc.Close()
	aside := NewAside(mc)

	if err := mc.Set(ctx, "k", "not json at all", time.Minute); err != nil {
		t.Fatalf("seed: %v", err)
	}

	got, err := GetOrCompute(ctx, aside, "k", time.Minute, func(ctx context.Context) (payload, error) {
		return payload{Value: 9}, nil
	})
	if err != nil {
		t.Fatalf("corrupt entry must be treated as a miss: %v", err)
	}
	if got.Value != 9 {
		t.Fatalf("expected recomputed value, got %+v", got)
	}
}

func TestGetOrComputeDistinctKeys(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()
	defer mc.Close()
	aside := NewAside(mc)

	for i := 0; i < 3; i++ {
		key := fmt.Sprintf("k%d", i)
		got, err := GetOrCompute(ctx, aside, key, time.Minute, func(ctx context.Context) (int, error) {
			return i * 10, nil
		})
		if err != nil {
			t.Fatalf("get or compute: %v", err)
		}
		if got != i*10 {
			t.Fatalf("key %s: expected %d, got %d", key, i*10, got)
		}
	}
}
