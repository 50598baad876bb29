package genetic

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 任何交叉方式下，子代在每个位置上的基因都应来自双亲在该位置的基因
func assertGenesFromParents(t *testing.T, p1, p2, o1, o2 *Chromosome) {
	t.Helper()
	require.Equal(t, p1.Length(), o1.Length())
	require.Equal(t, p1.Length(), o2.Length())
	for i := 0; i < p1.Length(); i++ {
		parentGenes := []int64{p1.Assignment(i), p2.Assignment(i)}
		assert.Contains(t, parentGenes, o1.Assignment(i))
		assert.Contains(t, parentGenes, o2.Assignment(i))
		// 两个子代在同一位置合起来恰好是双亲的基因
		assert.Equal(t, p1.Assignment(i)+p2.Assignment(i), o1.Assignment(i)+o2.Assignment(i))
	}
}

func TestCrossoverRateZeroReturnsParentCopies(t *testing.T) {
	p1 := NewChromosomeFromAssignments([]int64{1, 2, 3})
	p2 := NewChromosomeFromAssignments([]int64{4, 5, 6})

	x := NewCrossover(CrossoverUniform, 0, rand.New(rand.NewSource(1)))
	o1, o2 := x.Crossover(p1, p2)

	assert.True(t, o1.Equal(p1))
	assert.True(t, o2.Equal(p2))
	// 返回的是拷贝而不是双亲本身
	o1.SetAssignment(0, 99)
	assert.Equal(t, int64(1), p1.Assignment(0))
}

func TestUniformCrossover(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	p1 := NewChromosomeFromAssignments([]int64{1, 1, 1, 1, 1, 1, 1, 1})
	p2 := NewChromosomeFromAssignments([]int64{2, 2, 2, 2, 2, 2, 2, 2})

	x := NewCrossover(CrossoverUniform, 1, rng)
	o1, o2 := x.Crossover(p1, p2)

	assertGenesFromParents(t, p1, p2, o1, o2)
	assert.False(t, o1.FitnessEvaluated())
	assert.False(t, o2.FitnessEvaluated())
}

func TestSinglePointCrossoverKeepsPrefixAndSwapsSuffix(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	p1 := NewChromosomeFromAssignments([]int64{1, 1, 1, 1, 1, 1})
	p2 := NewChromosomeFromAssignments([]int64{2, 2, 2, 2, 2, 2})

	x := NewCrossover(CrossoverSinglePoint, 1, rng)
	o1, o2 := x.Crossover(p1, p2)

	assertGenesFromParents(t, p1, p2, o1, o2)

	// 子代 1 应该是前缀来自父本 1、后缀来自父本 2，即存在唯一一个切换点
	switches := 0
	for i := 1; i < o1.Length(); i++ {
		if o1.Assignment(i) != o1.Assignment(i-1) {
			switches++
		}
	}
	assert.Equal(t, 1, switches)
	assert.Equal(t, int64(1), o1.Assignment(0))
	assert.Equal(t, int64(2), o1.Assignment(o1.Length()-1))
}

func TestTwoPointCrossoverSwapsMiddleSegment(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	p1 := NewChromosomeFromAssignments([]int64{1, 1, 1, 1, 1, 1, 1, 1})
	p2 := NewChromosomeFromAssignments([]int64{2, 2, 2, 2, 2, 2, 2, 2})

	x := NewCrossover(CrossoverTwoPoint, 1, rng)
	for i := 0; i < 20; i++ {
		o1, o2 := x.Crossover(p1, p2)
		assertGenesFromParents(t, p1, p2, o1, o2)

		// 交换的基因构成一个连续区间 [a, b)，b 不超过 N-1，因此最后一个位置总来自父本 1
		switches := 0
		for j := 1; j < o1.Length(); j++ {
			if o1.Assignment(j) != o1.Assignment(j-1) {
				switches++
			}
		}
		assert.LessOrEqual(t, switches, 2)
		assert.Equal(t, int64(1), o1.Assignment(o1.Length()-1))
	}
}

func TestSinglePointCrossoverOnLengthOne(t *testing.T) {
	p1 := NewChromosomeFromAssignments([]int64{1})
	p2 := NewChromosomeFromAssignments([]int64{2})

	x := NewCrossover(CrossoverSinglePoint, 1, rand.New(rand.NewSource(5)))
	o1, o2 := x.Crossover(p1, p2)

	assert.True(t, o1.Equal(p1))
	assert.True(t, o2.Equal(p2))
}
