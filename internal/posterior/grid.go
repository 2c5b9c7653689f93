// Package posterior holds the discretized latent-trait posterior: a fixed
// theta grid, rectangle-rule quadrature, log-space Bayesian updates, and the
// EAP / posterior-SD readouts the selector and stopping rule consume.
package posterior

import "fmt"

// Default grid: theta in [-4, 4] over 161 nodes, step 0.05. Replay
// determinism depends on every participant in an experiment sharing the
// exact same grid, so these are captured per session, never global state.
const (
	DefaultThetaMin    = -4.0
	DefaultThetaMax    = 4.0
	DefaultThetaPoints = 161
)

// maxStep is the coarsest step at which the rectangle-rule moments stay
// numerically trustworthy.
const maxStep = 0.1

// #region grid

// Grid is an immutable equally spaced theta lattice.
type Grid struct {
	nodes []float64
	step  float64
}

// NewGrid builds a grid of points equally spaced nodes over [min, max],
// both endpoints included. Points must be at least 21 and the resulting
// step at most 0.1.
func NewGrid(min, max float64, points int) (*Grid, error) {
	if max <= min {
		return nil, fmt.Errorf("grid: max %.2f must exceed min %.2f", max, min)
	}
	if points < 21 {
		return nil, fmt.Errorf("grid: %d points, need at least 21", points)
	}
	step := (max - min) / float64(points-1)
	if step > maxStep {
		return nil, fmt.Errorf("grid: step %.4f exceeds %.2f, use more points", step, maxStep)
	}

	nodes := make([]float64, points)
	for i := range nodes {
		nodes[i] = min + float64(i)*step
	}
	// Pin the endpoint exactly.
	nodes[points-1] = max

	return &Grid{nodes: nodes, step: step}, nil
}

// DefaultGrid returns the [-4, 4] x 161 grid.
func DefaultGrid() *Grid {
	g, err := NewGrid(DefaultThetaMin, DefaultThetaMax, DefaultThetaPoints)
	if err != nil {
		panic(err) // constants are in range
	}
	return g
}

// Len returns the node count.
func (g *Grid) Len() int { return len(g.nodes) }

// Step returns the node spacing.
func (g *Grid) Step() float64 { return g.step }

// Node returns the theta value at index i.
func (g *Grid) Node(i int) float64 { return g.nodes[i] }

// #endregion grid
