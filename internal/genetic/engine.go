package genetic

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/sysu-ecnc-dev/opti-match/backend/internal/domain"
)

// 精英数量的默认上下限
const (
	defaultMinEliteCount = 1
	defaultMaxEliteCount = 50
)

// GenerationStats 每一代的统计信息
type GenerationStats struct {
	Generation        int32   `json:"generation"`
	BestFitness       float64 `json:"bestFitness"`
	AverageFitness    float64 `json:"averageFitness"`
	WorstFitness      float64 `json:"worstFitness"`
	StandardDeviation float64 `json:"standardDeviation"`
	ValidCount        int32   `json:"validCount"`
	BestEverFitness   float64 `json:"bestEverFitness"` // 历史最优，跨代单调不减
}

// ResultAssignment 最终分配结果中的一条记录
type ResultAssignment struct {
	StudentID      int64  `json:"studentID"`
	ProjectID      int64  `json:"projectID"`
	PreferenceRank *int32 `json:"preferenceRank"` // 为 nil 时表示该项目不在学生的志愿中
}

// Result 一次完整运行的结果
type Result struct {
	Best            *Chromosome           `json:"-"`
	BestFitness     float64               `json:"bestFitness"`
	Breakdown       *FitnessBreakdown     `json:"breakdown"`
	Assignments     []ResultAssignment    `json:"assignments"`
	Stats           []GenerationStats     `json:"stats"`
	Generations     int32                 `json:"generations"` // 实际执行的代数
	ExecutionTimeMs int64                 `json:"executionTimeMs"`
	Valid           bool                  `json:"valid"`
	Violations      *ConstraintViolations `json:"violations"` // 最终结果中残留的约束违反
	Advisories      []string              `json:"advisories"` // 运行后的提示信息，如无可行项目的学生
	Cancelled       bool                  `json:"cancelled"`
}

// Engine 遗传算法的驱动器
// 学生、项目、志愿在整个运行期间被视为只读快照
type Engine struct {
	params      *Parameters
	students    []*domain.Student
	projects    []*domain.Project
	preferences []*domain.Preference

	evaluator *FitnessEvaluator

	onGeneration func(GenerationStats) // 每代统计记录后的回调，可为 nil
}

func NewEngine(params *Parameters, students []*domain.Student, projects []*domain.Project, preferences []*domain.Preference) (*Engine, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if len(students) == 0 {
		return nil, fmt.Errorf("学生列表不能为空")
	}
	if len(projects) == 0 {
		return nil, fmt.Errorf("项目列表不能为空")
	}

	studentByID := make(map[int64]*domain.Student)
	for _, student := range students {
		studentByID[student.ID] = student
	}
	projectByID := make(map[int64]*domain.Project)
	for _, project := range projects {
		projectByID[project.ID] = project
	}

	// 数据一致性检查，不一致时直接失败
	for _, pref := range preferences {
		if _, exists := studentByID[pref.StudentID]; !exists {
			return nil, fmt.Errorf("志愿指向不存在的学生 %d", pref.StudentID)
		}
		if _, exists := projectByID[pref.ProjectID]; !exists {
			return nil, fmt.Errorf("志愿指向不存在的项目 %d", pref.ProjectID)
		}
	}
	for _, student := range students {
		if !student.HasPartner() {
			continue
		}
		partner, exists := studentByID[*student.PartnerID]
		if !exists {
			return nil, fmt.Errorf("学生 %d 的同伴 %d 不存在", student.ID, *student.PartnerID)
		}
		// 同伴关系不对称时只告警，不修复
		if partner.PartnerID == nil || *partner.PartnerID != student.ID {
			slog.Warn("同伴关系不对称", "studentID", student.ID, "partnerID", *student.PartnerID)
		}
	}

	evaluator := NewFitnessEvaluator(students, projects, preferences)
	evaluator.SetPenaltyWeights(params.CapacityPenaltyWeight, params.GPAPenaltyWeight, params.PartnerPenaltyWeight)

	return &Engine{
		params:      params,
		students:    students,
		projects:    projects,
		preferences: preferences,
		evaluator:   evaluator,
	}, nil
}

// OnGeneration 注册每代统计记录后的回调
func (e *Engine) OnGeneration(fn func(GenerationStats)) {
	e.onGeneration = fn
}

func (e *Engine) Evaluator() *FitnessEvaluator {
	return e.evaluator
}

// Run 执行完整的一次运行
// 配置了随机种子时，相同输入的两次运行结果完全一致
// ctx 被取消时在代与代之间停止，返回已有的最优结果
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	start := time.Now()

	var rng *rand.Rand
	if e.params.Seed != nil {
		rng = rand.New(rand.NewSource(*e.params.Seed))
	} else {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	checker := NewConstraintChecker(e.students, e.projects, rng)
	projectIDs := checker.ProjectIDs()
	selector := NewSelector(e.params.SelectionMethod, int(e.params.TournamentSize), rng)
	crossover := NewCrossover(e.params.CrossoverMethod, e.params.CrossoverRate, rng)
	mutator := NewMutator(e.params.MutationMethod, e.params.MutationRate, projectIDs, rng)
	elitism := NewElitism(e.params.ElitePercentage, defaultMinEliteCount, defaultMaxEliteCount, true)

	// 生成并评估初始种群
	pop := RandomPopulation(int(e.params.PopulationSize), len(e.students), projectIDs, rng)
	for _, c := range pop.Chromosomes() {
		if e.params.RepairEnabled {
			checker.Repair(c)
		}
		if _, err := e.evaluator.Evaluate(c); err != nil {
			return nil, err
		}
		checker.CheckAll(c)
	}

	bestEver := pop.Best().Copy()
	stats := make([]GenerationStats, 0, e.params.MaxGenerations)
	cancelled := false

	for g := int32(0); g < e.params.MaxGenerations; g++ {
		// 取消只在代与代的边界生效，不报告未完成的代
		if ctx.Err() != nil {
			cancelled = true
			break
		}

		// 更新历史最优并记录本代统计
		if pop.BestFitness() > bestEver.Fitness() {
			bestEver = pop.Best().Copy()
		}

		genStats := GenerationStats{
			Generation:        g,
			BestFitness:       pop.BestFitness(),
			AverageFitness:    pop.AverageFitness(),
			WorstFitness:      pop.WorstFitness(),
			StandardDeviation: pop.FitnessStdDev(),
			ValidCount:        int32(pop.CountValid()),
			BestEverFitness:   bestEver.Fitness(),
		}
		stats = append(stats, genStats)
		if e.onGeneration != nil {
			e.onGeneration(genStats)
		}

		// 停止条件: 先检查目标适应度，再检查收敛
		if e.params.TargetFitness != nil && bestEver.Fitness() >= *e.params.TargetFitness {
			break
		}
		if e.params.ConvergenceEnabled && e.converged(stats) {
			break
		}

		// 繁殖下一代: 先保留精英，再用选择/交叉/变异填满剩余名额
		newPop := NewPopulation(int(e.params.PopulationSize))
		for _, c := range elitism.SelectElite(pop) {
			newPop.Add(c)
		}

		for newPop.Size() < int(e.params.PopulationSize) {
			parent1, parent2 := selector.SelectParents(pop)
			offspring1, offspring2 := crossover.Crossover(parent1, parent2)

			mutator.Mutate(offspring1)
			mutator.Mutate(offspring2)

			if e.params.RepairEnabled {
				checker.Repair(offspring1)
				checker.Repair(offspring2)
			}

			newPop.Add(offspring1)
			if newPop.Size() < int(e.params.PopulationSize) {
				newPop.Add(offspring2)
			}
		}

		// 评估所有非精英的子代
		for _, c := range newPop.Chromosomes() {
			if c.FitnessEvaluated() {
				continue
			}
			if _, err := e.evaluator.Evaluate(c); err != nil {
				return nil, err
			}
			checker.CheckAll(c)
		}

		pop = newPop
	}

	// 最后一代繁殖出的种群可能比历史最优更好
	if pop.BestFitness() > bestEver.Fitness() {
		bestEver = pop.Best().Copy()
	}

	return e.buildResult(bestEver, stats, checker, cancelled, time.Since(start)), nil
}

// converged 检查最近的收敛窗口内历史最优的总提升是否低于阈值
func (e *Engine) converged(stats []GenerationStats) bool {
	window := int(e.params.ConvergenceGenerations)
	if len(stats) < window {
		return false
	}
	latest := stats[len(stats)-1].BestEverFitness
	earliest := stats[len(stats)-window].BestEverFitness
	return latest-earliest < e.params.ConvergenceThreshold
}

func (e *Engine) buildResult(best *Chromosome, stats []GenerationStats, checker *ConstraintChecker, cancelled bool, elapsed time.Duration) *Result {
	checker.CheckAll(best)

	assignments := make([]ResultAssignment, 0, len(e.students))
	for i, student := range e.students {
		projectID := best.Assignment(i)
		assignments = append(assignments, ResultAssignment{
			StudentID:      student.ID,
			ProjectID:      projectID,
			PreferenceRank: e.evaluator.PreferenceRank(student.ID, projectID),
		})
	}

	result := &Result{
		Best:            best,
		BestFitness:     best.Fitness(),
		Breakdown:       e.evaluator.Breakdown(best),
		Assignments:     assignments,
		Stats:           stats,
		Generations:     int32(len(stats)),
		ExecutionTimeMs: elapsed.Milliseconds(),
		Valid:           best.Valid(),
		Advisories:      e.advisories(),
		Cancelled:       cancelled,
	}
	if !best.Valid() {
		result.Violations = checker.Violations(best)
	}

	return result
}

// advisories 列出没有任何项目满足其绩点的学生
// 这类学生的分配无法修复，只能由惩罚机制压低适应度
func (e *Engine) advisories() []string {
	advisories := make([]string, 0)
	for _, student := range e.students {
		feasible := false
		for _, project := range e.projects {
			if project.MeetsGPARequirement(student.GPA) {
				feasible = true
				break
			}
		}
		if !feasible {
			advisories = append(advisories, fmt.Sprintf("学生 %s（ID %d，绩点 %.2f）的绩点低于所有项目的要求，无法找到可行的分配", student.FullName, student.ID, student.GPA))
		}
	}
	return advisories
}

// TheoreticalMaxFitness 所有学生都分到第一志愿时的适应度上界
func (e *Engine) TheoreticalMaxFitness() float64 {
	return e.evaluator.TheoreticalMaxFitness()
}
