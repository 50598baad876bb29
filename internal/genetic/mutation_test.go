package genetic

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMutationRateZeroIsIdentity(t *testing.T) {
	c := NewChromosomeFromAssignments([]int64{1, 2, 3, 4})
	before := c.Assignments()

	m := NewMutator(MutationSwap, 0, []int64{1, 2, 3, 4}, rand.New(rand.NewSource(1)))
	for i := 0; i < 50; i++ {
		assert.False(t, m.Mutate(c))
	}

	assert.Equal(t, before, c.Assignments())
}

func TestSwapMutationPreservesMultiset(t *testing.T) {
	c := NewChromosomeFromAssignments([]int64{1, 2, 3, 4, 5})
	before := c.Assignments()
	sort.Slice(before, func(i, j int) bool { return before[i] < before[j] })

	m := NewMutator(MutationSwap, 1, nil, rand.New(rand.NewSource(2)))
	require.True(t, m.Mutate(c))

	after := c.Assignments()
	sort.Slice(after, func(i, j int) bool { return after[i] < after[j] })
	assert.Equal(t, before, after)
	assert.False(t, c.FitnessEvaluated())
}

func TestSwapMutationOnLengthOneIsNoOp(t *testing.T) {
	c := NewChromosomeFromAssignments([]int64{7})

	m := NewMutator(MutationSwap, 1, nil, rand.New(rand.NewSource(3)))
	m.Mutate(c)

	assert.Equal(t, []int64{7}, c.Assignments())
}

func TestRandomResetMutationUsesCandidates(t *testing.T) {
	candidates := []int64{10, 11, 12}
	c := NewChromosomeFromAssignments([]int64{10, 10, 10, 10})

	m := NewMutator(MutationRandomReset, 1, candidates, rand.New(rand.NewSource(4)))
	require.True(t, m.Mutate(c))

	for _, assignment := range c.Assignments() {
		assert.Contains(t, candidates, assignment)
	}
}

func TestScrambleMutationPreservesMultiset(t *testing.T) {
	c := NewChromosomeFromAssignments([]int64{1, 2, 3, 4, 5, 6, 7, 8})
	before := c.Assignments()
	sort.Slice(before, func(i, j int) bool { return before[i] < before[j] })

	m := NewMutator(MutationScramble, 1, nil, rand.New(rand.NewSource(5)))
	require.True(t, m.Mutate(c))

	after := c.Assignments()
	sort.Slice(after, func(i, j int) bool { return after[i] < after[j] })
	assert.Equal(t, before, after)
}

func TestInversionAppliedTwiceIsIdentity(t *testing.T) {
	c := NewChromosomeFromAssignments([]int64{1, 2, 3, 4, 5, 6})
	before := c.Assignments()

	m := NewMutator(MutationInversion, 1, nil, rand.New(rand.NewSource(6)))
	m.InvertSegment(c, 1, 4)
	assert.NotEqual(t, before, c.Assignments())
	m.InvertSegment(c, 1, 4)
	assert.Equal(t, before, c.Assignments())
}

func TestPerGeneMutationCountsChanges(t *testing.T) {
	c := NewChromosomeFromAssignments([]int64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1})

	m := NewMutator(MutationRandomReset, 1, []int64{2}, rand.New(rand.NewSource(7)))
	count := m.MutatePerGene(c, 1.0)

	assert.Equal(t, 10, count)
	for _, assignment := range c.Assignments() {
		assert.Equal(t, int64(2), assignment)
	}

	// 概率为 0 时不应有任何变化
	count = m.MutatePerGene(c, 0.0)
	assert.Equal(t, 0, count)
}

func TestAdaptiveMutationRateBounds(t *testing.T) {
	m := NewMutator(MutationSwap, 0, nil, rand.New(rand.NewSource(8)))

	// minRate = maxRate = 1 时必然变异，即使适应度为负
	c := NewChromosomeFromAssignments([]int64{1, 2, 3})
	c.SetFitness(-100)
	assert.True(t, m.MutateAdaptive(c, 300, 1, 1))

	// minRate = maxRate = 0 时必然不变异
	c2 := NewChromosomeFromAssignments([]int64{1, 2, 3})
	c2.SetFitness(150)
	assert.False(t, m.MutateAdaptive(c2, 300, 0, 0))
}
