// Package fgmres implements flexible, right-preconditioned GMRES over plain
// []float64 vectors, used to tighten the pressure-subsystem solve beyond a
// single AMG cycle. The outer Arnoldi loop (build an orthonormal Krylov
// basis one vector per iteration, track the growing Hessenberg matrix,
// solve the small least-squares problem, recombine) follows the shape of
// utils/sparse_block.go's BlockSparse.GMRES, generalized from dense block
// vectors to flat []float64 pressure vectors and from a fixed preconditioner
// to a flexible (possibly iteration-varying) one, applying Givens rotations
// to solve the small least-squares problem in place of a placeholder stub.
package fgmres

import "math"

// Operator is the linear system's matrix-free action, matching
// amg.LinearOperator's shape so an AMG pressure solver's LinearOperator()
// can be passed directly.
type Operator interface {
	MulAdd(dst, x []float64)
	Rows() int
}

// Preconditioner applies an approximate inverse to r, writing the result
// into z. It may vary between calls (the "flexible" in FGMRES) — this is
// why the Krylov basis (Z) must be stored alongside V, rather than only V.
type Preconditioner func(z, r []float64) error

// Workspace holds the Arnoldi basis, flexible preconditioned directions,
// and Hessenberg factors for a single restart cycle. It is lazily
// constructed on first Solve and reused across calls with the same
// maxIter, so repeated tightening calls within a CPR Apply avoid
// reallocating the Krylov basis every time.
type Workspace struct {
	maxIter int
	n       int

	v  [][]float64 // orthonormal basis, len maxIter+1
	z  [][]float64 // preconditioned directions, len maxIter
	w  []float64   // scratch
	h  [][]float64 // Hessenberg, (maxIter+1) x maxIter
	cs []float64   // Givens cosines
	sn []float64   // Givens sines
	g  []float64   // transformed rhs, len maxIter+1
	y  []float64   // solution coefficients, len maxIter
}

func newWorkspace(n, maxIter int) *Workspace {
	w := &Workspace{maxIter: maxIter, n: n}
	w.v = make([][]float64, maxIter+1)
	for i := range w.v {
		w.v[i] = make([]float64, n)
	}
	w.z = make([][]float64, maxIter)
	for i := range w.z {
		w.z[i] = make([]float64, n)
	}
	w.w = make([]float64, n)
	w.h = make([][]float64, maxIter+1)
	for i := range w.h {
		w.h[i] = make([]float64, maxIter)
	}
	w.cs = make([]float64, maxIter)
	w.sn = make([]float64, maxIter)
	w.g = make([]float64, maxIter+1)
	w.y = make([]float64, maxIter)
	return w
}

// Solver wraps an Operator with a reusable Workspace, constructed lazily on
// first Solve and kept alive across calls.
type Solver struct {
	A       Operator
	MaxIter int
	Tol     float64 // relative tolerance: converged once resNorm < Tol*beta0 + Atol
	Atol    float64 // absolute floor, guards against beta0 == 0

	ws *Workspace
}

// NewSolver constructs a solver against A. The Arnoldi workspace is not
// allocated until the first Solve call. Tol is a relative tolerance judged
// against the initial residual norm; Atol is the absolute floor added to
// it, defaulting to 1e-12.
func NewSolver(a Operator, maxIter int, tol float64) *Solver {
	if maxIter <= 0 {
		maxIter = 20
	}
	if tol <= 0 {
		tol = 1e-6
	}
	return &Solver{A: a, MaxIter: maxIter, Tol: tol, Atol: 1e-12}
}

func norm2(x []float64) float64 {
	var s float64
	for _, v := range x {
		s += v * v
	}
	return math.Sqrt(s)
}

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

// Solve approximately solves A x = b in place on x (used as both the
// initial guess and the output), applying precond as a right
// preconditioner at each Arnoldi step. It returns the number of iterations
// taken and the final residual norm.
func (s *Solver) Solve(x, b []float64, precond Preconditioner) (iters int, resNorm float64, err error) {
	n := s.A.Rows()
	if s.ws == nil || s.ws.n != n || s.ws.maxIter != s.MaxIter {
		s.ws = newWorkspace(n, s.MaxIter)
	}
	ws := s.ws

	r := make([]float64, n)
	ax := make([]float64, n)
	s.A.MulAdd(ax, x)
	for i := 0; i < n; i++ {
		r[i] = b[i] - ax[i]
	}
	beta := norm2(r)
	atol := s.Atol
	if atol <= 0 {
		atol = 1e-12
	}
	threshold := s.Tol*beta + atol
	if beta < threshold {
		return 0, beta, nil
	}
	for i := 0; i < n; i++ {
		ws.v[0][i] = r[i] / beta
	}
	for i := range ws.g {
		ws.g[i] = 0
	}
	ws.g[0] = beta

	j := 0
	for ; j < s.MaxIter; j++ {
		if precond != nil {
			if perr := precond(ws.z[j], ws.v[j]); perr != nil {
				return j, norm2(r), perr
			}
		} else {
			copy(ws.z[j], ws.v[j])
		}
		for i := range ws.w {
			ws.w[i] = 0
		}
		s.A.MulAdd(ws.w, ws.z[j])

		for i := 0; i <= j; i++ {
			hij := dot(ws.v[i], ws.w)
			ws.h[i][j] = hij
			for k := 0; k < n; k++ {
				ws.w[k] -= hij * ws.v[i][k]
			}
		}
		hj1j := norm2(ws.w)
		ws.h[j+1][j] = hj1j

		for i := 0; i < j; i++ {
			applyGivens(ws.h, i, j, ws.cs[i], ws.sn[i])
		}
		cs, sn := givensRotation(ws.h[j][j], hj1j)
		ws.cs[j], ws.sn[j] = cs, sn
		ws.h[j][j] = cs*ws.h[j][j] + sn*hj1j
		ws.h[j+1][j] = 0
		ws.g[j+1] = -sn * ws.g[j]
		ws.g[j] = cs * ws.g[j]

		resNorm = math.Abs(ws.g[j+1])
		if hj1j < 1e-14 {
			j++
			break
		}
		if resNorm < threshold {
			j++
			break
		}
		for i := 0; i < n; i++ {
			ws.v[j+1][i] = ws.w[i] / hj1j
		}
	}

	solveUpperTriangular(ws.h, ws.g, ws.y, j)
	for i := 0; i < j; i++ {
		yi := ws.y[i]
		zi := ws.z[i]
		for k := 0; k < n; k++ {
			x[k] += yi * zi[k]
		}
	}
	return j, resNorm, nil
}

func givensRotation(a, b float64) (cs, sn float64) {
	if b == 0 {
		return 1, 0
	}
	if math.Abs(b) > math.Abs(a) {
		t := a / b
		sn = 1 / math.Sqrt(1+t*t)
		cs = t * sn
		return
	}
	t := b / a
	cs = 1 / math.Sqrt(1+t*t)
	sn = t * cs
	return
}

func applyGivens(h [][]float64, i, j int, cs, sn float64) {
	hi := h[i][j]
	hi1 := h[i+1][j]
	h[i][j] = cs*hi + sn*hi1
	h[i+1][j] = -sn*hi + cs*hi1
}

func solveUpperTriangular(h [][]float64, g, y []float64, m int) {
	for i := m - 1; i >= 0; i-- {
		sum := g[i]
		for k := i + 1; k < m; k++ {
			sum -= h[i][k] * y[k]
		}
		y[i] = sum / h[i][i]
	}
}
