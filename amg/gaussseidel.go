package amg

import (
	"fmt"

	"github.com/flowsim/cpr/blockjac"
	"github.com/flowsim/cpr/pressuremat"
)

// GaussSeidelAMG is the built-in default pressure_precond: a single-level,
// multi-sweep forward Gauss-Seidel relaxation on A_p. It exists only so
// cpr.Preconditioner is runnable standalone without an external AMG
// package; it is explicitly not a multigrid hierarchy (no coarsening, no
// restriction/prolongation operators) and makes no attempt at one. Sweeps
// defaults to 2, one pre-smooth and one post-smooth forward sweep standing
// in for a single V-cycle.
type GaussSeidelAMG struct {
	Sweeps int

	n       int
	rowPtr  []int
	colIdx  []int
	perm    []int // perm[pos] is the structural index k in A_p.Values this row-major slot reads
	values  []float64
	diagPos []int // diagPos[r] indexes into values/colIdx for row r's diagonal
}

// NewGaussSeidelAMG constructs a relaxation-based pressure solver doing
// sweeps forward Gauss-Seidel passes per Apply. sweeps <= 0 defaults to 2.
func NewGaussSeidelAMG(sweeps int) *GaussSeidelAMG {
	if sweeps <= 0 {
		sweeps = 2
	}
	return &GaussSeidelAMG{Sweeps: sweeps}
}

// toRowMajor converts ap's CSC-or-CSR pattern into a row-major (CSR) layout
// once, regardless of ap.Format, so Gauss-Seidel sweeps (which walk rows)
// work the same way no matter which format the caller built A_p in. The
// solver's internal representation is its own concern, independent of how
// the caller stores A_p.
func toRowMajor(ap *pressuremat.Matrix) (rowPtr, colIdx, perm []int) {
	n := ap.N
	nnz := len(ap.Idx)
	if ap.Format == blockjac.CSR {
		rowPtr = append([]int(nil), ap.Ptr...)
		colIdx = append([]int(nil), ap.Idx...)
		perm = make([]int, nnz)
		for i := range perm {
			perm[i] = i
		}
		return
	}
	// CSC: bucket-sort structural indices by row.
	counts := make([]int, n+1)
	for c := 0; c < n; c++ {
		for k := ap.Ptr[c]; k < ap.Ptr[c+1]; k++ {
			counts[ap.Idx[k]+1]++
		}
	}
	rowPtr = make([]int, n+1)
	for r := 0; r < n; r++ {
		rowPtr[r+1] = rowPtr[r] + counts[r+1]
	}
	cursor := append([]int(nil), rowPtr...)
	colIdx = make([]int, nnz)
	perm = make([]int, nnz)
	for c := 0; c < n; c++ {
		for k := ap.Ptr[c]; k < ap.Ptr[c+1]; k++ {
			row := ap.Idx[k]
			pos := cursor[row]
			colIdx[pos] = c
			perm[pos] = k
			cursor[row]++
		}
	}
	return
}

func (g *GaussSeidelAMG) refreshValues(ap *pressuremat.Matrix) {
	if g.values == nil || len(g.values) != len(g.perm) {
		g.values = make([]float64, len(g.perm))
	}
	for i, k := range g.perm {
		g.values[i] = ap.Values[k]
	}
}

func (g *GaussSeidelAMG) findDiag() error {
	g.diagPos = make([]int, g.n)
	for r := 0; r < g.n; r++ {
		g.diagPos[r] = -1
		for pos := g.rowPtr[r]; pos < g.rowPtr[r+1]; pos++ {
			if g.colIdx[pos] == r {
				g.diagPos[r] = pos
				break
			}
		}
		if g.diagPos[r] == -1 {
			return fmt.Errorf("amg: GaussSeidelAMG row %d has no diagonal entry", r)
		}
	}
	return nil
}

// Setup implements amg.PressureSolver: builds the row-major representation
// and diagonal index (the "AMG hierarchy" in this stand-in's minimal,
// single-level sense), then loads values.
func (g *GaussSeidelAMG) Setup(ap *pressuremat.Matrix, rp []float64, ctx ModelContext) error {
	g.n = ap.N
	g.rowPtr, g.colIdx, g.perm = toRowMajor(ap)
	g.refreshValues(ap)
	return g.findDiag()
}

// PartialRefresh reloads numeric values only; the row-major structure and
// diagonal positions (this stand-in's analogue of AMG coarsening) are
// reused rather than rebuilt.
func (g *GaussSeidelAMG) PartialRefresh(ap *pressuremat.Matrix, rp []float64, ctx ModelContext) error {
	g.refreshValues(ap)
	return nil
}

// Apply runs g.Sweeps forward Gauss-Seidel sweeps on A_p * deltaP = rp,
// starting from a zero guess.
func (g *GaussSeidelAMG) Apply(deltaP, rp []float64) error {
	for i := range deltaP {
		deltaP[i] = 0
	}
	for s := 0; s < g.Sweeps; s++ {
		for r := 0; r < g.n; r++ {
			sum := rp[r]
			for pos := g.rowPtr[r]; pos < g.rowPtr[r+1]; pos++ {
				c := g.colIdx[pos]
				if c == r {
					continue
				}
				sum -= g.values[pos] * deltaP[c]
			}
			deltaP[r] = sum / g.values[g.diagPos[r]]
		}
	}
	return nil
}

// LinearOperator returns the row-major A_p operator view, so C6's FGMRES
// tightening path can form residuals A_p*x without a second conversion.
func (g *GaussSeidelAMG) LinearOperator() LinearOperator {
	return (*gsOperator)(g)
}

type gsOperator GaussSeidelAMG

func (op *gsOperator) Rows() int { return op.n }

func (op *gsOperator) MulAdd(dst, x []float64) {
	for r := 0; r < op.n; r++ {
		var sum float64
		for pos := op.rowPtr[r]; pos < op.rowPtr[r+1]; pos++ {
			sum += op.values[pos] * x[op.colIdx[pos]]
		}
		dst[r] += sum
	}
}
