package openpl

// System is the root handle an embedding host creates first; every Scene
// holds a non-owning back-reference to the System that created it (spec.md
// §9, "Back-reference from scene to system" — ownership flows system to
// scene, never the reverse, and the back-reference is never used to extend
// a System's lifetime).
type System struct {
	compactHistory bool
	useOpenCL      bool
}

// SystemOption configures a System at construction time.
type SystemOption func(*System)

// WithCompactHistory makes every Scene created from this System retain its
// simulation grid in float16 rather than float32 (SPEC_FULL.md §5.5).
func WithCompactHistory() SystemOption {
	return func(s *System) { s.compactHistory = true }
}

// WithOpenCLAcceleration makes every Scene created from this System run the
// FDTD kernel's pressure and velocity sub-steps on an OpenCL device when one
// is available, falling back to the CPU otherwise (SPEC_FULL.md §5.3).
func WithOpenCLAcceleration() SystemOption {
	return func(s *System) { s.useOpenCL = true }
}

// NewSystem creates a System. A host typically creates exactly one.
func NewSystem(opts ...SystemOption) *System {
	s := &System{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewScene creates a Scene owned by s.
func (s *System) NewScene() *Scene {
	return &Scene{system: s, voxeliser: newAsyncVoxeliser()}
}
