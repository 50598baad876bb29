package genetic

import "math/rand"

type MutationMethod string

const (
	MutationSwap        MutationMethod = "swap"
	MutationRandomReset MutationMethod = "random_reset"
	MutationScramble    MutationMethod = "scramble"
	MutationInversion   MutationMethod = "inversion"
)

// Mutator 变异算子，以 rate 的概率对染色体原地应用一次变异
type Mutator struct {
	method     MutationMethod
	rate       float64
	projectIDs []int64
	rng        *rand.Rand
}

func NewMutator(method MutationMethod, rate float64, projectIDs []int64, rng *rand.Rand) *Mutator {
	return &Mutator{
		method:     method,
		rate:       rate,
		projectIDs: projectIDs,
		rng:        rng,
	}
}

// Mutate 返回是否发生了变异
func (m *Mutator) Mutate(c *Chromosome) bool {
	if m.rng.Float64() > m.rate {
		return false
	}

	switch m.method {
	case MutationRandomReset:
		m.randomReset(c)
	case MutationScramble:
		m.scramble(c)
	case MutationInversion:
		m.inversion(c)
	default:
		m.swap(c)
	}
	return true
}

// MutatePerGene 每个位置独立地以 perGeneRate 的概率重置为随机项目
// 返回发生变异的位置数
func (m *Mutator) MutatePerGene(c *Chromosome, perGeneRate float64) int {
	mutated := 0
	for i := 0; i < c.Length(); i++ {
		if m.rng.Float64() < perGeneRate {
			c.SetAssignment(i, m.projectIDs[m.rng.Intn(len(m.projectIDs))])
			mutated++
		}
	}
	return mutated
}

// MutateAdaptive 适应度越差变异率越高
// 有效变异率 = maxRate - (fitness/maxFitness)·(maxRate - minRate)
// 比值被限制在 [0, 1] 内，负适应度按 0 处理
func (m *Mutator) MutateAdaptive(c *Chromosome, maxFitness, minRate, maxRate float64) bool {
	ratio := 0.0
	if maxFitness > 0 {
		ratio = c.Fitness() / maxFitness
	}
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}

	adaptiveRate := maxRate - ratio*(maxRate-minRate)
	if m.rng.Float64() < adaptiveRate {
		m.swap(c)
		return true
	}
	return false
}

// swap 随机交换两个不同位置的分配，长度不足 2 时不做任何事
func (m *Mutator) swap(c *Chromosome) {
	length := c.Length()
	if length < 2 {
		return
	}

	index1 := m.rng.Intn(length)
	index2 := m.rng.Intn(length)
	for index2 == index1 {
		index2 = m.rng.Intn(length)
	}
	c.SwapAssignments(index1, index2)
}

func (m *Mutator) randomReset(c *Chromosome) {
	index := m.rng.Intn(c.Length())
	c.SetAssignment(index, m.projectIDs[m.rng.Intn(len(m.projectIDs))])
}

// scramble 对随机闭区间 [a, b] 做 Fisher-Yates 洗牌
func (m *Mutator) scramble(c *Chromosome) {
	length := c.Length()
	if length < 2 {
		return
	}

	start := m.rng.Intn(length)
	end := m.rng.Intn(length)
	if start > end {
		start, end = end, start
	}

	for i := end; i > start; i-- {
		j := start + m.rng.Intn(i-start+1)
		c.SwapAssignments(i, j)
	}
}

// inversion 反转随机闭区间 [a, b]
func (m *Mutator) inversion(c *Chromosome) {
	length := c.Length()
	if length < 2 {
		return
	}

	start := m.rng.Intn(length)
	end := m.rng.Intn(length)
	if start > end {
		start, end = end, start
	}

	m.InvertSegment(c, start, end)
}

// InvertSegment 反转给定闭区间，连续应用两次等于恒等变换
func (m *Mutator) InvertSegment(c *Chromosome, start, end int) {
	if start > end {
		start, end = end, start
	}
	for start < end {
		c.SwapAssignments(start, end)
		start++
		end--
	}
}
