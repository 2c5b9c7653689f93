package posterior

import (
	"errors"
	"fmt"
	"math"

	"github.com/danielpatrickdp/adaptive-assessment/go-engine/internal/bank"
	"github.com/danielpatrickdp/adaptive-assessment/go-engine/internal/irt"
)

// ErrDegeneratePosterior means the renormalizing sum underflowed to zero.
// The kernel's probability floor makes this unreachable in practice; if it
// fires anyway it is a bug signal and the session must fail, not retry.
var ErrDegeneratePosterior = errors.New("degenerate posterior")

// #region engine

// Engine holds one trait's grid-discretized posterior plus cached moments.
// Purely computational: no I/O, all mutation synchronous in the caller.
type Engine struct {
	grid    *Grid
	density []float64 // nonnegative, integrates to 1 under sum*step
	theta   float64   // cached EAP
	sd      float64   // cached posterior standard deviation
}

// NewEngine starts from the standard-normal prior renormalized on the grid.
func NewEngine(grid *Grid) *Engine {
	e := &Engine{
		grid:    grid,
		density: make([]float64, grid.Len()),
	}
	for i := range e.density {
		theta := grid.Node(i)
		e.density[i] = math.Exp(-0.5*theta*theta) / math.Sqrt(2*math.Pi)
	}
	e.renormalize()
	e.refreshMoments()
	return e
}

// #endregion engine

// #region update

// Update multiplies the posterior by the likelihood of observing the given
// canonical category (1..7) on the item, working in log space with
// max-subtraction for stability. Reverse scoring happens before this call;
// the category here is already canonicalized.
func (e *Engine) Update(it bank.Item, category int) error {
	if category < 1 || category > irt.Categories {
		return fmt.Errorf("category %d out of range 1..%d", category, irt.Categories)
	}

	logPost := make([]float64, e.grid.Len())
	maxLog := math.Inf(-1)
	for i := range logPost {
		probs := irt.CategoryProbs(it, e.grid.Node(i))
		lp := math.Log(e.density[i]) + math.Log(probs[category-1])
		logPost[i] = lp
		if lp > maxLog {
			maxLog = lp
		}
	}

	for i := range logPost {
		e.density[i] = math.Exp(logPost[i] - maxLog)
	}

	if err := e.renormalizeChecked(); err != nil {
		return err
	}
	e.refreshMoments()
	return nil
}

// #endregion update

// #region moments

// EAP returns the cached posterior mean.
func (e *Engine) EAP() float64 { return e.theta }

// SD returns the cached posterior standard deviation.
func (e *Engine) SD() float64 { return e.sd }

// Mass integrates the density under the rectangle rule. Equals 1 within
// numerical tolerance after every update.
func (e *Engine) Mass() float64 {
	sum := 0.0
	for _, d := range e.density {
		sum += d
	}
	return sum * e.grid.Step()
}

// Density returns a copy of the posterior density vector.
func (e *Engine) Density() []float64 {
	out := make([]float64, len(e.density))
	copy(out, e.density)
	return out
}

func (e *Engine) refreshMoments() {
	step := e.grid.Step()

	mean := 0.0
	for i, d := range e.density {
		mean += e.grid.Node(i) * d * step
	}

	variance := 0.0
	for i, d := range e.density {
		diff := e.grid.Node(i) - mean
		variance += diff * diff * d * step
	}
	if variance < 0 {
		variance = 0
	}

	e.theta = mean
	e.sd = math.Sqrt(variance)
}

// #endregion moments

// #region renormalize

func (e *Engine) renormalize() {
	sum := 0.0
	for _, d := range e.density {
		sum += d
	}
	norm := sum * e.grid.Step()
	for i := range e.density {
		e.density[i] /= norm
	}
}

func (e *Engine) renormalizeChecked() error {
	sum := 0.0
	for _, d := range e.density {
		sum += d
	}
	norm := sum * e.grid.Step()
	if norm <= 0 || math.IsNaN(norm) || math.IsInf(norm, 0) {
		return fmt.Errorf("%w: renormalizer %v", ErrDegeneratePosterior, norm)
	}
	for i := range e.density {
		e.density[i] /= norm
	}
	return nil
}

// #endregion renormalize
