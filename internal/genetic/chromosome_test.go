package genetic

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChromosomeSetAssignmentInvalidatesFitness(t *testing.T) {
	c := NewChromosomeFromAssignments([]int64{1, 2, 3})
	c.SetFitness(123.45)
	require.True(t, c.FitnessEvaluated())

	c.SetAssignment(1, 9)

	assert.False(t, c.FitnessEvaluated())
	assert.Equal(t, 0.0, c.Fitness())
	assert.Equal(t, int64(9), c.Assignment(1))
}

func TestChromosomeSwapTwiceIsIdentity(t *testing.T) {
	c := NewChromosomeFromAssignments([]int64{1, 2, 3, 4})
	before := c.Assignments()

	c.SwapAssignments(0, 3)
	c.SwapAssignments(0, 3)

	assert.Equal(t, before, c.Assignments())
}

func TestChromosomeSwapInvalidatesFitness(t *testing.T) {
	c := NewChromosomeFromAssignments([]int64{1, 2})
	c.SetFitness(10)

	c.SwapAssignments(0, 1)

	assert.False(t, c.FitnessEvaluated())
}

func TestChromosomeCopyIsIndependent(t *testing.T) {
	c := NewChromosomeFromAssignments([]int64{1, 2, 3})
	c.SetFitness(50)
	c.SetValid(true)

	copied := c.Copy()
	require.True(t, c.Equal(copied))
	assert.Equal(t, c.Fitness(), copied.Fitness())
	assert.True(t, copied.Valid())

	copied.SetAssignment(0, 99)
	assert.Equal(t, int64(1), c.Assignment(0))
	assert.False(t, c.Equal(copied))
}

func TestChromosomeEqualIgnoresFitness(t *testing.T) {
	c1 := NewChromosomeFromAssignments([]int64{1, 2, 3})
	c2 := NewChromosomeFromAssignments([]int64{1, 2, 3})
	c1.SetFitness(100)
	c2.SetFitness(-100)

	assert.True(t, c1.Equal(c2))
}

func TestRandomChromosomeUsesCandidateProjects(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	projectIDs := []int64{7, 8, 9}

	c := RandomChromosome(20, projectIDs, rng)

	require.Equal(t, 20, c.Length())
	for _, assignment := range c.Assignments() {
		assert.Contains(t, projectIDs, assignment)
	}
	assert.False(t, c.FitnessEvaluated())
}

func TestChromosomeCountAndListStudentsInProject(t *testing.T) {
	c := NewChromosomeFromAssignments([]int64{5, 6, 5, 7, 5})

	assert.Equal(t, 3, c.CountStudentsInProject(5))
	assert.Equal(t, []int{0, 2, 4}, c.StudentsInProject(5))
	assert.Equal(t, 0, c.CountStudentsInProject(99))
	assert.Empty(t, c.StudentsInProject(99))
}
