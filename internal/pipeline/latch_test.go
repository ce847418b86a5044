package pipeline

import (
	"sync"
	"testing"
)

func TestLatch_StartsUntripped(t *testing.T) {
	l := NewLatch()
	if l.Tripped() {
		t.Error("New latch must start untripped")
	}
}

func TestLatch_TripIsPermanent(t *testing.T) {
	l := NewLatch()
	l.Trip()
	if !l.Tripped() {
		t.Error("Latch did not trip")
	}
	l.Trip()
	if !l.Tripped() {
		t.Error("Latch must stay tripped")
	}
}

func TestLatch_ConcurrentTrips(t *testing.T) {
	l := NewLatch()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Trip()
			_ = l.Tripped()
		}()
	}
	wg.Wait()
	if !l.Tripped() {
		t.Error("Latch lost a trip under concurrency")
	}
}
