package parallel

import (
	"sync/atomic"
	"testing"
)

func TestPool_ExecuteAllRunsEverything(t *testing.T) {
	p := New(4)
	defer p.Close()

	var count atomic.Int64
	work := make([]func(), 100)
	for i := range work {
		work[i] = func() { count.Add(1) }
	}

	p.ExecuteAll(work)
	if got := count.Load(); got != 100 {
		t.Errorf("executed %d items, want 100", got)
	}
}

func TestPool_ExecuteAllEmpty(t *testing.T) {
	p := New(2)
	defer p.Close()
	p.ExecuteAll(nil)
	p.ExecuteAll([]func(){})
}

func TestPool_DefaultWorkers(t *testing.T) {
	p := New(0)
	defer p.Close()
	if p.Workers() < 1 {
		t.Errorf("Workers() = %d, want >= 1", p.Workers())
	}
}

func TestPool_ClosedRunsInline(t *testing.T) {
	p := New(2)
	p.Close()
	p.Close() // idempotent

	var count atomic.Int64
	p.ExecuteAll([]func(){
		func() { count.Add(1) },
		func() { count.Add(1) },
	})
	if got := count.Load(); got != 2 {
		t.Errorf("executed %d items after Close, want 2", got)
	}
}

func TestPool_ReuseAcrossBatches(t *testing.T) {
	p := New(3)
	defer p.Close()

	var count atomic.Int64
	for batch := 0; batch < 10; batch++ {
		work := make([]func(), 7)
		for i := range work {
			work[i] = func() { count.Add(1) }
		}
		p.ExecuteAll(work)
	}
	if got := count.Load(); got != 70 {
		t.Errorf("executed %d items, want 70", got)
	}
}
