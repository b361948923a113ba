package blockjac

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// twoCellCSC builds a 2-cell, b=2, diagonal-only block Jacobian in CSC form:
//
//	J[0,0] = [[2,1],[1,3]], J[1,1] = [[4,0],[0,5]]
func twoCellCSC(t *testing.T) *BlockMatrix {
	ptr := []int{0, 1, 2}
	idx := []int{0, 1}
	blocks := []float64{
		2, 1, 1, 3,
		4, 0, 0, 5,
	}
	m, err := New(CSC, 2, 2, ptr, idx, blocks)
	assert.NoError(t, err)
	return m
}

func TestNewRejectsBadPtrLength(t *testing.T) {
	_, err := New(CSC, 2, 2, []int{0, 1}, []int{0}, make([]float64, 4))
	assert.Error(t, err)
}

func TestNewRejectsBadBlockLength(t *testing.T) {
	_, err := New(CSC, 2, 2, []int{0, 1, 2}, []int{0, 1}, make([]float64, 3))
	assert.Error(t, err)
}

func TestBlockView(t *testing.T) {
	m := twoCellCSC(t)
	assert.Equal(t, 2, m.NNZ())
	b0 := m.Block(0)
	assert.Equal(t, 2.0, b0.At(0, 0))
	assert.Equal(t, 1.0, b0.At(0, 1))
	assert.Equal(t, 1.0, b0.At(1, 0))
	assert.Equal(t, 3.0, b0.At(1, 1))

	// Block views alias the backing storage.
	b0.Set(0, 0, 99)
	assert.Equal(t, 99.0, m.Blocks[0])
}

func TestDiagFound(t *testing.T) {
	m := twoCellCSC(t)
	k, ok := m.Diag(0)
	assert.True(t, ok)
	assert.Equal(t, 0, k)
	k, ok = m.Diag(1)
	assert.True(t, ok)
	assert.Equal(t, 1, k)
}

func TestDiagMissing(t *testing.T) {
	// Off-diagonal-only pattern: cell 0 has no diagonal entry.
	ptr := []int{0, 1, 2}
	idx := []int{1, 0}
	blocks := make([]float64, 2*2*2)
	m, err := New(CSC, 2, 2, ptr, idx, blocks)
	assert.NoError(t, err)
	_, ok := m.Diag(0)
	assert.False(t, ok)
}

func TestRowOfCSC(t *testing.T) {
	m := twoCellCSC(t)
	// CSC: outer is the column, row comes from Idx.
	assert.Equal(t, 0, m.RowOf(0, 0))
	assert.Equal(t, 1, m.RowOf(1, 1))
}

func TestRowOfCSR(t *testing.T) {
	ptr := []int{0, 1, 2}
	idx := []int{0, 1}
	blocks := make([]float64, 2*2*2)
	m, err := New(CSR, 2, 2, ptr, idx, blocks)
	assert.NoError(t, err)
	// CSR: outer index is the row itself, regardless of k.
	assert.Equal(t, 0, m.RowOf(0, 0))
	assert.Equal(t, 1, m.RowOf(1, 1))
}
