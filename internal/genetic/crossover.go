package genetic

import "math/rand"

type CrossoverMethod string

const (
	CrossoverUniform     CrossoverMethod = "uniform"
	CrossoverSinglePoint CrossoverMethod = "single_point"
	CrossoverTwoPoint    CrossoverMethod = "two_point"
)

// Crossover 交叉算子，总是产出两个子代
// 以 1-rate 的概率不交叉，直接返回双亲的拷贝
type Crossover struct {
	method      CrossoverMethod
	rate        float64
	uniformBias float64
	rng         *rand.Rand
}

func NewCrossover(method CrossoverMethod, rate float64, rng *rand.Rand) *Crossover {
	return &Crossover{
		method:      method,
		rate:        rate,
		uniformBias: 0.5,
		rng:         rng,
	}
}

func (x *Crossover) SetUniformBias(bias float64) {
	x.uniformBias = bias
}

func (x *Crossover) Crossover(parent1, parent2 *Chromosome) (*Chromosome, *Chromosome) {
	if x.rng.Float64() > x.rate {
		return parent1.Copy(), parent2.Copy()
	}

	switch x.method {
	case CrossoverSinglePoint:
		return x.singlePoint(parent1, parent2)
	case CrossoverTwoPoint:
		return x.twoPoint(parent1, parent2)
	default:
		return x.uniform(parent1, parent2)
	}
}

// uniform 每个位置独立地以 uniformBias 的概率保持双亲的对应关系，否则交换
func (x *Crossover) uniform(parent1, parent2 *Chromosome) (*Chromosome, *Chromosome) {
	length := parent1.Length()
	offspring1 := NewChromosome(length)
	offspring2 := NewChromosome(length)

	for i := 0; i < length; i++ {
		if x.rng.Float64() < x.uniformBias {
			offspring1.SetAssignment(i, parent1.Assignment(i))
			offspring2.SetAssignment(i, parent2.Assignment(i))
		} else {
			offspring1.SetAssignment(i, parent2.Assignment(i))
			offspring2.SetAssignment(i, parent1.Assignment(i))
		}
	}

	return offspring1, offspring2
}

// singlePoint 交叉点取在 {1..N-1}，避免产生与双亲完全相同的子代
func (x *Crossover) singlePoint(parent1, parent2 *Chromosome) (*Chromosome, *Chromosome) {
	length := parent1.Length()
	if length < 2 {
		return parent1.Copy(), parent2.Copy()
	}

	offspring1 := NewChromosome(length)
	offspring2 := NewChromosome(length)

	crossPoint := 1 + x.rng.Intn(length-1)
	for i := 0; i < length; i++ {
		if i < crossPoint {
			offspring1.SetAssignment(i, parent1.Assignment(i))
			offspring2.SetAssignment(i, parent2.Assignment(i))
		} else {
			offspring1.SetAssignment(i, parent2.Assignment(i))
			offspring2.SetAssignment(i, parent1.Assignment(i))
		}
	}

	return offspring1, offspring2
}

// twoPoint 区间 [a, b) 内的基因在双亲之间交换，区间外保持不变
func (x *Crossover) twoPoint(parent1, parent2 *Chromosome) (*Chromosome, *Chromosome) {
	length := parent1.Length()
	offspring1 := NewChromosome(length)
	offspring2 := NewChromosome(length)

	point1 := x.rng.Intn(length)
	point2 := x.rng.Intn(length)
	if point1 > point2 {
		point1, point2 = point2, point1
	}

	for i := 0; i < length; i++ {
		if i >= point1 && i < point2 {
			offspring1.SetAssignment(i, parent2.Assignment(i))
			offspring2.SetAssignment(i, parent1.Assignment(i))
		} else {
			offspring1.SetAssignment(i, parent1.Assignment(i))
			offspring2.SetAssignment(i, parent2.Assignment(i))
		}
	}

	return offspring1, offspring2
}
