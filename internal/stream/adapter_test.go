package stream

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestOrderPreserved(t *testing.T) {
	a := New[string](nil)
	for _, v := range []string{"A", "B", "C"} {
		if err := a.Push(v); err != nil {
			t.Fatalf("Push(%s): %v", v, err)
		}
	}

	ctx := context.Background()
	for i, want := range []string{"A", "B", "C"} {
		item, ok := a.Next(ctx)
		if !ok {
			t.Fatalf("Next #%d reported end of sequence", i)
		}
		if item.Value != want || item.Seq != uint64(i+1) {
			t.Errorf("Next #%d = %+v, want %s seq %d", i, item, want, i+1)
		}
	}
}

func TestCloseWakesSuspendedNext(t *testing.T) {
	a := New[int](nil)

	done := make(chan bool)
	go func() {
		_, ok := a.Next(context.Background())
		done <- ok
	}()

	// Give the consumer a moment to suspend
	time.Sleep(20 * time.Millisecond)
	a.Close()

	select {
	case ok := <-done:
		if ok {
			t.Error("Next should report end of sequence after Close")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Next did not resolve after Close")
	}
}

func TestPushWakesSuspendedNext(t *testing.T) {
	a := New[int](nil)

	got := make(chan int)
	go func() {
		item, _ := a.Next(context.Background())
		got <- item.Value
	}()

	time.Sleep(20 * time.Millisecond)
	a.Push(7)

	select {
	case v := <-got:
		if v != 7 {
			t.Errorf("Next = %d, want 7", v)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Next did not resolve after Push")
	}
}

func TestDrainAfterClose(t *testing.T) {
	a := New[int](nil)
	a.Push(1)
	a.Push(2)
	a.Close()

	if err := a.Push(3); !errors.Is(err, ErrClosed) {
		t.Errorf("Push after Close = %v, want ErrClosed", err)
	}

	var got []int
	for v := range a.All(context.Background()) {
		got = append(got, v)
	}
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("drained %v, want [1 2]", got)
	}
	if _, ok := a.Next(context.Background()); ok {
		t.Error("Next after drain should report end of sequence")
	}
}

func TestCloseIdempotentAndReleases(t *testing.T) {
	var released int
	a := New[int](func() { released++ })

	a.Close()
	a.Close()
	a.Fail(errors.New("late"))

	if released != 1 {
		t.Errorf("release called %d times, want 1", released)
	}
	if !a.Closed() {
		t.Error("Closed should report true")
	}
	if a.Err() != nil {
		t.Errorf("Err = %v, failure after close must not be recorded", a.Err())
	}
}

func TestFailEndsSequence(t *testing.T) {
	a := New[int](nil)
	a.Push(1)

	cause := errors.New("connection reset")
	a.Fail(cause)

	item, ok := a.Next(context.Background())
	if !ok || item.Value != 1 {
		t.Fatalf("queued item lost on failure: %+v %v", item, ok)
	}
	if _, ok := a.Next(context.Background()); ok {
		t.Error("failure should end the sequence like Close")
	}
	if !errors.Is(a.Err(), cause) {
		t.Errorf("Err = %v, want %v", a.Err(), cause)
	}
}

func TestNextHonorsContext(t *testing.T) {
	a := New[int](nil)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, ok := a.Next(ctx); ok {
		t.Error("Next should give up when ctx is done")
	}
	if a.Closed() {
		t.Error("context expiry must not close the adapter")
	}
}

func TestConcurrentProducer(t *testing.T) {
	const n = 1000
	a := New[int](nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			a.Push(i)
		}
		a.Close()
	}()

	want := 0
	for v := range a.All(context.Background()) {
		if v != want {
			t.Fatalf("got %d, want %d", v, want)
		}
		want++
	}
	wg.Wait()
	if want != n {
		t.Errorf("received %d items, want %d", want, n)
	}
}

func TestAllStopsEarly(t *testing.T) {
	a := New[int](nil)
	a.Push(1)
	a.Push(2)
	a.Push(3)

	for v := range a.All(context.Background()) {
		if v == 2 {
			break
		}
	}
	if a.Len() != 1 {
		t.Errorf("Len = %d, want 1 item left after early break", a.Len())
	}
}
