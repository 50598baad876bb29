package genetic

import "math"

// Elitism 精英保留策略
// 精英数量 = clamp(round(percentage·N), minCount, maxCount)，且不超过种群大小
type Elitism struct {
	percentage float64
	minCount   int
	maxCount   int
	uniqueOnly bool // 只保留分配向量互不相同的精英
}

func NewElitism(percentage float64, minCount, maxCount int, uniqueOnly bool) *Elitism {
	return &Elitism{
		percentage: percentage,
		minCount:   minCount,
		maxCount:   maxCount,
		uniqueOnly: uniqueOnly,
	}
}

func (e *Elitism) EliteCount(populationSize int) int {
	count := int(math.Round(float64(populationSize) * e.percentage))
	if count < e.minCount {
		count = e.minCount
	}
	if count > e.maxCount {
		count = e.maxCount
	}
	if count > populationSize {
		count = populationSize
	}
	return count
}

// SelectElite 返回种群中最优的若干个染色体的深拷贝
// uniqueOnly 开启时跳过分配向量重复的染色体，凑不够时返回更少的精英
func (e *Elitism) SelectElite(pop *Population) []*Chromosome {
	targetCount := e.EliteCount(pop.Size())
	if !e.uniqueOnly {
		return pop.Elite(targetCount)
	}

	pop.SortByFitness()
	elite := make([]*Chromosome, 0, targetCount)
	for i := 0; i < pop.Size() && len(elite) < targetCount; i++ {
		candidate := pop.Get(i)
		duplicate := false
		for _, taken := range elite {
			if taken.Equal(candidate) {
				duplicate = true
				break
			}
		}
		if !duplicate {
			elite = append(elite, candidate.Copy())
		}
	}
	return elite
}

// ApplyElitism 用精英的深拷贝覆盖新种群中最差的若干个体
func (e *Elitism) ApplyElitism(elite []*Chromosome, newPop *Population) {
	if len(elite) == 0 {
		return
	}

	newPop.SortByFitness()
	popSize := newPop.Size()
	for i := 0; i < len(elite) && i < popSize; i++ {
		newPop.Set(popSize-1-i, elite[i].Copy())
	}
}

// ElitePreserved 检查精英保留后最优适应度没有倒退
func (e *Elitism) ElitePreserved(oldBest *Chromosome, newPop *Population) bool {
	newBest := newPop.Best()
	return newBest != nil && newBest.Fitness() >= oldBest.Fitness()
}
