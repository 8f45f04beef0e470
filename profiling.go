package openpl

import (
	"os"
	"runtime/pprof"
	"sync"
)

// StartCPUProfile begins writing a CPU profile to path, for hosts that want
// to capture a Voxelise or Simulate call. Adapted from the teacher's
// startDefaultPGORecording; exported here since OpenPL has no game loop of
// its own to wrap the call site for the caller.
func StartCPUProfile(path string) (stop func(), err error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return nil, err
	}
	var once sync.Once
	stop = func() {
		once.Do(func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		})
	}
	return stop, nil
}
