package promise_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/viaduct-dev/viaduct/concurrent/promise"
)

func TestReadyAndErr(t *testing.T) {
	v, err := promise.BlockOn(promise.Ready(42))
	if err != nil || v != 42 {
		t.Fatalf("got (%v, %v), want (42, nil)", v, err)
	}

	boom := errors.New("boom")
	_, err = promise.BlockOn(promise.Err(boom))
	if err != boom {
		t.Fatalf("got %v, want %v", err, boom)
	}
}

func TestResolveWakesMultipleAwaiters(t *testing.T) {
	p, resolver := promise.New()

	results := make(chan interface{}, 3)
	for i := 0; i < 3; i++ {
		go func() {
			v, err := promise.BlockOn(p)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			results <- v
		}()
	}

	time.Sleep(10 * time.Millisecond)
	resolver.Resolve("value")

	for i := 0; i < 3; i++ {
		select {
		case v := <-results:
			if v != "value" {
				t.Fatalf("got %v, want value", v)
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for awaiter to observe resolution")
		}
	}
}

func TestResolveIsExactlyOnce(t *testing.T) {
	p, resolver := promise.New()
	resolver.Resolve("first")
	resolver.Resolve("second")
	resolver.Reject(errors.New("ignored"))

	v, err := promise.BlockOn(p)
	if err != nil || v != "first" {
		t.Fatalf("got (%v, %v), want (first, nil)", v, err)
	}
}

func TestJoinPreservesOrder(t *testing.T) {
	a, ra := promise.New()
	b, rb := promise.New()
	c := promise.Ready("C")

	go func() {
		time.Sleep(5 * time.Millisecond)
		rb.Resolve("B")
		ra.Resolve("A")
	}()

	joined := promise.Join(a, b, c)
	v, err := promise.BlockOn(joined)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	values := v.([]interface{})
	if values[0] != "A" || values[1] != "B" || values[2] != "C" {
		t.Fatalf("got %v, want [A B C]", values)
	}
}

func TestJoinPropagatesFirstError(t *testing.T) {
	boom := errors.New("boom")
	joined := promise.Join(promise.Ready(1), promise.Err(boom), promise.Ready(3))
	_, err := promise.BlockOn(joined)
	if err != boom {
		t.Fatalf("got %v, want %v", err, boom)
	}
}

func TestAwaitRespectsContextCancellation(t *testing.T) {
	p, _ := promise.New()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := p.Await(ctx)
	if err != context.DeadlineExceeded {
		t.Fatalf("got %v, want %v", err, context.DeadlineExceeded)
	}
}
