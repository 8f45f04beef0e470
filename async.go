package openpl

import "sync"

// voxeliserStatus is the async driver's three-state status flag (spec.md
// §4.7).
type voxeliserStatus int32

const (
	statusNotStarted voxeliserStatus = iota
	statusOngoing
	statusFinished
)

// asyncVoxeliser is the single worker thread plus atomic status spec.md §9
// calls for ("avoid building a general task queue — this one worker
// suffices"). Voxelise spawns it, Simulate and the Finished-branch of a
// repeat Voxelise call join it.
type asyncVoxeliser struct {
	mu     sync.Mutex
	status voxeliserStatus
	done   chan struct{}
	err    error

	lattice *Lattice
}

func newAsyncVoxeliser() *asyncVoxeliser {
	return &asyncVoxeliser{status: statusNotStarted}
}

// getStatus reports the current state without blocking.
func (a *asyncVoxeliser) getStatus() voxeliserStatus {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

// start implements the Voxelise transition table: NotStarted or Finished
// both lead to a fresh worker being spawned (Finished first joins the old
// one); Ongoing is a no-op.
func (a *asyncVoxeliser) start(work func() (*Lattice, error)) {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch a.status {
	case statusOngoing:
		return
	case statusFinished:
		<-a.done // join before treating as fresh, per spec.md §4.7
	}

	a.status = statusOngoing
	a.done = make(chan struct{})
	a.lattice = nil
	a.err = nil

	go func() {
		lattice, err := work()
		a.mu.Lock()
		a.lattice = lattice
		a.err = err
		a.status = statusFinished
		close(a.done)
		a.mu.Unlock()
	}()
}

// join blocks until the in-flight (or already-finished) worker has
// completed, then returns its result. Simulate calls this unconditionally
// before touching the lattice (spec.md §4.7).
func (a *asyncVoxeliser) join() (*Lattice, error) {
	a.mu.Lock()
	status := a.status
	done := a.done
	a.mu.Unlock()

	if status == statusNotStarted {
		return nil, nil
	}
	<-done

	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lattice, a.err
}
