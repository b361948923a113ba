package amg

import "github.com/flowsim/cpr/blockjac"

// toRowMajorBlockPattern converts j's CSC-or-CSR structural pattern into a
// row-major (rowPtr, colIdx) layout, the block-matrix analogue of
// gaussseidel.go's toRowMajor: block-ILU(0)'s IKJ elimination order needs
// row-at-a-time access regardless of how the caller stored J.
func toRowMajorBlockPattern(j *blockjac.BlockMatrix) (rowPtr, colIdx []int) {
	n := j.N
	nnz := j.NNZ()
	if j.Format == blockjac.CSR {
		return append([]int(nil), j.Ptr...), append([]int(nil), j.Idx...)
	}
	counts := make([]int, n+1)
	for c := 0; c < n; c++ {
		for k := j.Ptr[c]; k < j.Ptr[c+1]; k++ {
			counts[j.Idx[k]+1]++
		}
	}
	rowPtr = make([]int, n+1)
	for r := 0; r < n; r++ {
		rowPtr[r+1] = rowPtr[r] + counts[r+1]
	}
	cursor := append([]int(nil), rowPtr...)
	colIdx = make([]int, nnz)
	for c := 0; c < n; c++ {
		for k := j.Ptr[c]; k < j.Ptr[c+1]; k++ {
			row := j.Idx[k]
			colIdx[cursor[row]] = c
			cursor[row]++
		}
	}
	return
}

// toRowMajorBlockPerm recovers, for each row-major slot, the original
// structural index k (into j.Blocks) it corresponds to — needed once, at
// Setup, to copy block values into row-major order.
func toRowMajorBlockPerm(j *blockjac.BlockMatrix, rowPtr, colIdx []int) []int {
	if j.Format == blockjac.CSR {
		perm := make([]int, j.NNZ())
		for i := range perm {
			perm[i] = i
		}
		return perm
	}
	n := j.N
	cursor := append([]int(nil), rowPtr...)
	perm := make([]int, j.NNZ())
	for c := 0; c < n; c++ {
		for k := j.Ptr[c]; k < j.Ptr[c+1]; k++ {
			row := j.Idx[k]
			perm[cursor[row]] = k
			cursor[row]++
		}
	}
	return perm
}
