package genetic

import "math/rand"

// Chromosome: 一个完整的分配方案
// 下标 i 对应学生列表中第 i 个学生，值为分配给该学生的项目 ID
type Chromosome struct {
	assignments []int64
	fitness     float64
	evaluated   bool // 适应度缓存是否有效，任何写操作都会将其置为 false
	valid       bool
}

func NewChromosome(length int) *Chromosome {
	return &Chromosome{
		assignments: make([]int64, length),
	}
}

func NewChromosomeFromAssignments(assignments []int64) *Chromosome {
	c := &Chromosome{
		assignments: make([]int64, len(assignments)),
	}
	copy(c.assignments, assignments)
	return c
}

// RandomChromosome 为每个学生独立地随机挑选一个候选项目
func RandomChromosome(length int, projectIDs []int64, rng *rand.Rand) *Chromosome {
	c := NewChromosome(length)
	for i := range c.assignments {
		c.assignments[i] = projectIDs[rng.Intn(len(projectIDs))]
	}
	return c
}

func (c *Chromosome) Length() int {
	return len(c.assignments)
}

func (c *Chromosome) Assignment(i int) int64 {
	return c.assignments[i]
}

func (c *Chromosome) SetAssignment(i int, projectID int64) {
	c.assignments[i] = projectID
	c.InvalidateFitness()
}

// Assignments 返回分配向量的拷贝
func (c *Chromosome) Assignments() []int64 {
	out := make([]int64, len(c.assignments))
	copy(out, c.assignments)
	return out
}

func (c *Chromosome) Fitness() float64 {
	return c.fitness
}

func (c *Chromosome) SetFitness(fitness float64) {
	c.fitness = fitness
	c.evaluated = true
}

func (c *Chromosome) FitnessEvaluated() bool {
	return c.evaluated
}

// InvalidateFitness 在分配向量被修改后必须调用
func (c *Chromosome) InvalidateFitness() {
	c.fitness = 0
	c.evaluated = false
}

func (c *Chromosome) Valid() bool {
	return c.valid
}

func (c *Chromosome) SetValid(valid bool) {
	c.valid = valid
}

// SwapAssignments 交换两个学生的分配，用于变异
func (c *Chromosome) SwapAssignments(i, j int) {
	c.assignments[i], c.assignments[j] = c.assignments[j], c.assignments[i]
	c.InvalidateFitness()
}

func (c *Chromosome) CountStudentsInProject(projectID int64) int {
	count := 0
	for _, assignment := range c.assignments {
		if assignment == projectID {
			count++
		}
	}
	return count
}

// StudentsInProject 返回被分配到指定项目的所有学生下标
func (c *Chromosome) StudentsInProject(projectID int64) []int {
	students := make([]int, 0)
	for i, assignment := range c.assignments {
		if assignment == projectID {
			students = append(students, i)
		}
	}
	return students
}

// Copy 深拷贝，包括缓存的适应度和合法性
func (c *Chromosome) Copy() *Chromosome {
	out := &Chromosome{
		assignments: make([]int64, len(c.assignments)),
		fitness:     c.fitness,
		evaluated:   c.evaluated,
		valid:       c.valid,
	}
	copy(out.assignments, c.assignments)
	return out
}

// Equal 只比较分配向量，不比较适应度
func (c *Chromosome) Equal(other *Chromosome) bool {
	if len(c.assignments) != len(other.assignments) {
		return false
	}
	for i := range c.assignments {
		if c.assignments[i] != other.assignments[i] {
			return false
		}
	}
	return true
}
