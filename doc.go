// Package openpl computes room-acoustic impulse responses for interactive
// audio. It voxelises triangle meshes in world space into a regular lattice
// and propagates a linearised acoustic wave equation over that lattice with a
// staggered-grid finite-difference time-domain (FDTD) solver.
package openpl
