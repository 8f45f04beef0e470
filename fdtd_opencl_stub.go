//go:build !opencl

package openpl

import "errors"

// openCLFDTDSolver is the no-op stand-in used when the module is built
// without the opencl tag, mirroring the teacher's opencl_wave_stub.go split.
type openCLFDTDSolver struct{}

func newOpenCLFDTDSolver(lattice *Lattice) (*openCLFDTDSolver, error) {
	return nil, errors.New("openpl: OpenCL support is not enabled; rebuild with -tags opencl")
}

func (s *openCLFDTDSolver) step(state *fdtdState, k float64) error {
	return errors.New("openpl: OpenCL solver unavailable")
}

func (s *openCLFDTDSolver) sync(state *fdtdState) error {
	return errors.New("openpl: OpenCL solver unavailable")
}

func (s *openCLFDTDSolver) upload(state *fdtdState) error {
	return errors.New("openpl: OpenCL solver unavailable")
}

func (s *openCLFDTDSolver) Close() {}

func (s *openCLFDTDSolver) DeviceName() string { return "" }
