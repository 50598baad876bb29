package genetic

import (
	"fmt"

	"github.com/sysu-ecnc-dev/opti-match/backend/internal/domain"
)

// 约束惩罚权重的默认值
const (
	DefaultCapacityPenaltyWeight = 50.0
	DefaultGPAPenaltyWeight      = 30.0
	DefaultPartnerPenaltyWeight  = 40.0
)

/**
 * FitnessEvaluator 计算染色体的适应度
 * fitness = preferenceScore - capacityPenalty - gpaPenalty - partnerPenalty
 * 其中:
 * 		1. preferenceScore 为志愿满足得分（学生分到排名越靠前的项目得分越高）
 * 		2. capacityPenalty 为容量惩罚（每超出/不足一个名额计一次）
 * 		3. gpaPenalty 为绩点惩罚（每个绩点不达标的学生计一次）
 * 		4. partnerPenalty 为拆伙惩罚（每对被拆开的同伴计一次）
 */
type FitnessEvaluator struct {
	students []*domain.Student
	projects []*domain.Project

	projectByID     map[int64]*domain.Project
	indexToStudent  map[int]int64
	studentToIndex  map[int64]int
	preferenceRanks map[int64]map[int64]int32 // studentID -> (projectID -> rank)

	capacityPenaltyWeight float64
	gpaPenaltyWeight      float64
	partnerPenaltyWeight  float64
}

// FitnessBreakdown 适应度各分量的拆解
type FitnessBreakdown struct {
	PreferenceScore float64 `json:"preferenceScore"`
	CapacityPenalty float64 `json:"capacityPenalty"`
	GPAPenalty      float64 `json:"gpaPenalty"`
	PartnerPenalty  float64 `json:"partnerPenalty"`
	TotalFitness    float64 `json:"totalFitness"`
}

func (b *FitnessBreakdown) TotalPenalty() float64 {
	return b.CapacityPenalty + b.GPAPenalty + b.PartnerPenalty
}

func NewFitnessEvaluator(students []*domain.Student, projects []*domain.Project, preferences []*domain.Preference) *FitnessEvaluator {
	e := &FitnessEvaluator{
		students:              students,
		projects:              projects,
		projectByID:           make(map[int64]*domain.Project),
		indexToStudent:        make(map[int]int64),
		studentToIndex:        make(map[int64]int),
		preferenceRanks:       make(map[int64]map[int64]int32),
		capacityPenaltyWeight: DefaultCapacityPenaltyWeight,
		gpaPenaltyWeight:      DefaultGPAPenaltyWeight,
		partnerPenaltyWeight:  DefaultPartnerPenaltyWeight,
	}

	for _, project := range projects {
		e.projectByID[project.ID] = project
	}

	// 学生下标和学生 ID 之间的双射
	for i, student := range students {
		e.indexToStudent[i] = student.ID
		e.studentToIndex[student.ID] = i
	}

	for _, pref := range preferences {
		if _, exists := e.preferenceRanks[pref.StudentID]; !exists {
			e.preferenceRanks[pref.StudentID] = make(map[int64]int32)
		}
		e.preferenceRanks[pref.StudentID][pref.ProjectID] = pref.Rank
	}

	return e
}

func (e *FitnessEvaluator) SetPenaltyWeights(capacity, gpa, partner float64) {
	e.capacityPenaltyWeight = capacity
	e.gpaPenaltyWeight = gpa
	e.partnerPenaltyWeight = partner
}

// Evaluate 计算并缓存染色体的适应度
func (e *FitnessEvaluator) Evaluate(c *Chromosome) (float64, error) {
	if c.Length() != len(e.students) {
		return 0, fmt.Errorf("染色体长度 %d 与学生数量 %d 不一致", c.Length(), len(e.students))
	}

	fitness := e.PreferenceScore(c) - e.CapacityPenalty(c) - e.GPAPenalty(c) - e.PartnerPenalty(c)
	c.SetFitness(fitness)
	return fitness, nil
}

// PreferenceScore 志愿满足得分，项目不在志愿中时计 0 分
func (e *FitnessEvaluator) PreferenceScore(c *Chromosome) float64 {
	score := 0.0
	for i := 0; i < c.Length(); i++ {
		studentID := e.indexToStudent[i]
		projectID := c.Assignment(i)

		if ranks, exists := e.preferenceRanks[studentID]; exists {
			if rank, exists := ranks[projectID]; exists {
				score += float64(domain.WeightForRank(rank))
			}
		}
	}
	return score
}

// CapacityPenalty 每个项目超出 max 或不足 min 的名额数乘以权重
func (e *FitnessEvaluator) CapacityPenalty(c *Chromosome) float64 {
	counts := e.countStudentsPerProject(c)

	penalty := 0.0
	for _, project := range e.projects {
		count := counts[project.ID]
		if count < int(project.MinCapacity) {
			penalty += e.capacityPenaltyWeight * float64(int(project.MinCapacity)-count)
		} else if count > int(project.MaxCapacity) {
			penalty += e.capacityPenaltyWeight * float64(count-int(project.MaxCapacity))
		}
	}
	return penalty
}

// GPAPenalty 每个绩点不满足所分配项目要求的学生计一次
func (e *FitnessEvaluator) GPAPenalty(c *Chromosome) float64 {
	penalty := 0.0
	for i := 0; i < c.Length(); i++ {
		student := e.students[i]
		project := e.projectByID[c.Assignment(i)]
		if project != nil && !project.MeetsGPARequirement(student.GPA) {
			penalty += e.gpaPenaltyWeight
		}
	}
	return penalty
}

// PartnerPenalty 每对被分到不同项目的同伴计一次
// 只在同伴下标大于自身下标时计数，避免重复
func (e *FitnessEvaluator) PartnerPenalty(c *Chromosome) float64 {
	penalty := 0.0
	for i := 0; i < c.Length(); i++ {
		student := e.students[i]
		if !student.HasPartner() {
			continue
		}
		partnerIndex, exists := e.studentToIndex[*student.PartnerID]
		if !exists || partnerIndex <= i {
			continue
		}
		if c.Assignment(i) != c.Assignment(partnerIndex) {
			penalty += e.partnerPenaltyWeight
		}
	}
	return penalty
}

// Breakdown 返回适应度各分量，不修改染色体的缓存
func (e *FitnessEvaluator) Breakdown(c *Chromosome) *FitnessBreakdown {
	preferenceScore := e.PreferenceScore(c)
	capacityPenalty := e.CapacityPenalty(c)
	gpaPenalty := e.GPAPenalty(c)
	partnerPenalty := e.PartnerPenalty(c)

	return &FitnessBreakdown{
		PreferenceScore: preferenceScore,
		CapacityPenalty: capacityPenalty,
		GPAPenalty:      gpaPenalty,
		PartnerPenalty:  partnerPenalty,
		TotalFitness:    preferenceScore - capacityPenalty - gpaPenalty - partnerPenalty,
	}
}

// PreferenceDistribution 统计每个志愿排名被满足的学生数
// 下标 0 表示分到的项目不在志愿中，1 到 5 对应各排名
func (e *FitnessEvaluator) PreferenceDistribution(c *Chromosome) [6]int {
	var distribution [6]int
	for i := 0; i < c.Length(); i++ {
		studentID := e.indexToStudent[i]
		projectID := c.Assignment(i)

		ranks, exists := e.preferenceRanks[studentID]
		if !exists {
			distribution[0]++
			continue
		}
		rank, exists := ranks[projectID]
		if !exists || rank < 1 || rank > 5 {
			distribution[0]++
			continue
		}
		distribution[rank]++
	}
	return distribution
}

// TheoreticalMaxFitness 所有学生都分到第一志愿且没有任何违反时的适应度
func (e *FitnessEvaluator) TheoreticalMaxFitness() float64 {
	return float64(len(e.students) * domain.WeightFirstChoice)
}

// PreferenceRank 返回学生对项目的志愿排名，不在志愿中时返回 nil
func (e *FitnessEvaluator) PreferenceRank(studentID int64, projectID int64) *int32 {
	ranks, exists := e.preferenceRanks[studentID]
	if !exists {
		return nil
	}
	rank, exists := ranks[projectID]
	if !exists {
		return nil
	}
	return &rank
}

func (e *FitnessEvaluator) countStudentsPerProject(c *Chromosome) map[int64]int {
	counts := make(map[int64]int)
	for i := 0; i < c.Length(); i++ {
		counts[c.Assignment(i)]++
	}
	return counts
}
