package broker

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"
)

func TestFanOutPreservesOrder(t *testing.T) {
	items := []int{0, 1, 2, 3, 4, 5, 6, 7}

	// Randomized completion order must not affect result positions.
	results, err := fanOut(context.Background(), items, func(_ context.Context, n int) (string, error) {
		time.Sleep(time.Duration(rand.Intn(10)) * time.Millisecond)
		return fmt.Sprintf("r%d", n), nil
	})
	if err != nil {
		t.Fatalf("fanOut failed: %v", err)
	}

	for i, r := range results {
		if want := fmt.Sprintf("r%d", i); r != want {
			t.Errorf("results[%d] = %q, want %q", i, r, want)
		}
	}
}

func TestFanOutFirstFailureWins(t *testing.T) {
	boom := errors.New("quota exceeded")
	items := []string{"k0", "k1", "k2"}

	results, err := fanOut(context.Background(), items, func(_ context.Context, key string) (string, error) {
		if key == "k1" {
			return "", boom
		}
		time.Sleep(5 * time.Millisecond)
		return key, nil
	})

	if !errors.Is(err, boom) {
		t.Fatalf("expected failure, got results=%v err=%v", results, err)
	}
	if results != nil {
		t.Errorf("a failed aggregation must not return partial results: %v", results)
	}
}

func TestFanOutEmpty(t *testing.T) {
	called := atomic.Bool{}
	results, err := fanOut(context.Background(), nil, func(_ context.Context, _ int) (int, error) {
		called.Store(true)
		return 0, nil
	})
	if err != nil {
		t.Fatalf("fanOut failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected empty results, got %v", results)
	}
	if called.Load() {
		t.Error("op must not run for empty input")
	}
}

func TestFanOutStragglersDiscarded(t *testing.T) {
	release := make(chan struct{})
	completions := atomic.Int32{}

	_, err := fanOut(context.Background(), []int{0, 1, 2}, func(_ context.Context, n int) (int, error) {
		if n == 0 {
			return 0, errors.New("fast failure")
		}
		<-release
		completions.Add(1)
		return n, nil
	})
	if err == nil {
		t.Fatal("expected failure")
	}

	// Stragglers finish into the buffered channel without blocking or
	// re-completing the aggregation.
	close(release)
	deadline := time.After(time.Second)
	for completions.Load() < 2 {
		select {
		case <-deadline:
			t.Fatal("straggler goroutines blocked after aggregation completed")
		default:
			time.Sleep(time.Millisecond)
		}
	}
}
