package weights

import "gonum.org/v1/gonum/mat"

// transpose returns a b x b dense copy of d's transpose — D_c^T for the
// quasi_impes strategy.
func transpose(d *mat.Dense, b int) *mat.Dense {
	out := mat.NewDense(b, b, nil)
	for i := 0; i < b; i++ {
		for j := 0; j < b; j++ {
			out.Set(i, j, d.At(j, i))
		}
	}
	return out
}

// denseFrom wraps a flat row-major b x b slice as a *mat.Dense.
func denseFrom(data []float64, b int) *mat.Dense {
	return mat.NewDense(b, b, data)
}
