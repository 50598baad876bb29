package genetic

import "fmt"

// Parameters 遗传算法参数
type Parameters struct {
	PopulationSize int32   `json:"populationSize"` // 种群大小
	MaxGenerations int32   `json:"maxGenerations"` // 最大迭代代数
	MutationRate   float64 `json:"mutationRate"`   // 变异概率
	CrossoverRate  float64 `json:"crossoverRate"`  // 交叉概率

	ElitePercentage float64 `json:"elitePercentage"` // 精英比例
	TournamentSize  int32   `json:"tournamentSize"`  // 锦标赛规模

	SelectionMethod SelectionMethod `json:"selectionMethod"`
	CrossoverMethod CrossoverMethod `json:"crossoverMethod"`
	MutationMethod  MutationMethod  `json:"mutationMethod"`

	ConvergenceEnabled     bool    `json:"convergenceEnabled"`     // 是否启用收敛检测
	ConvergenceGenerations int32   `json:"convergenceGenerations"` // 收敛窗口大小
	ConvergenceThreshold   float64 `json:"convergenceThreshold"`   // 窗口内历史最优的总提升低于该值则停止

	TargetFitness *float64 `json:"targetFitness"` // 达到该适应度时提前停止，nil 表示不启用

	RepairEnabled bool `json:"repairEnabled"`

	Seed *int64 `json:"seed"` // nil 表示使用非确定性的随机种子

	// 约束惩罚权重
	CapacityPenaltyWeight float64 `json:"capacityPenaltyWeight"`
	GPAPenaltyWeight      float64 `json:"gpaPenaltyWeight"`
	PartnerPenaltyWeight  float64 `json:"partnerPenaltyWeight"`
}

func DefaultParameters() *Parameters {
	return &Parameters{
		PopulationSize:         200,
		MaxGenerations:         1000,
		MutationRate:           0.02,
		CrossoverRate:          0.8,
		ElitePercentage:        0.05,
		TournamentSize:         3,
		SelectionMethod:        SelectionTournament,
		CrossoverMethod:        CrossoverUniform,
		MutationMethod:         MutationSwap,
		ConvergenceEnabled:     true,
		ConvergenceGenerations: 50,
		ConvergenceThreshold:   0.001,
		RepairEnabled:          true,
		CapacityPenaltyWeight:  DefaultCapacityPenaltyWeight,
		GPAPenaltyWeight:       DefaultGPAPenaltyWeight,
		PartnerPenaltyWeight:   DefaultPartnerPenaltyWeight,
	}
}

// 预设参数组合，按数据集规模选择
func PresetSmall() *Parameters {
	p := DefaultParameters()
	p.PopulationSize = 100
	p.MaxGenerations = 500
	p.MutationRate = 0.03
	p.CrossoverRate = 0.8
	p.ElitePercentage = 0.10
	p.TournamentSize = 3
	return p
}

func PresetMedium() *Parameters {
	p := DefaultParameters()
	p.PopulationSize = 200
	p.MaxGenerations = 1000
	p.MutationRate = 0.02
	p.CrossoverRate = 0.8
	p.ElitePercentage = 0.05
	p.TournamentSize = 4
	return p
}

func PresetLarge() *Parameters {
	p := DefaultParameters()
	p.PopulationSize = 500
	p.MaxGenerations = 2000
	p.MutationRate = 0.01
	p.CrossoverRate = 0.85
	p.ElitePercentage = 0.05
	p.TournamentSize = 5
	return p
}

func PresetQuick() *Parameters {
	p := DefaultParameters()
	p.PopulationSize = 50
	p.MaxGenerations = 100
	p.MutationRate = 0.05
	p.CrossoverRate = 0.9
	p.ElitePercentage = 0.10
	p.TournamentSize = 3
	p.ConvergenceGenerations = 20
	return p
}

func PresetHighQuality() *Parameters {
	p := DefaultParameters()
	p.PopulationSize = 750
	p.MaxGenerations = 3000
	p.MutationRate = 0.025
	p.CrossoverRate = 0.85
	p.ElitePercentage = 0.10
	p.TournamentSize = 5
	p.ConvergenceGenerations = 100
	p.ConvergenceThreshold = 0.0005
	return p
}

// PresetByName 根据名称返回预设，名称未知时返回 false
func PresetByName(name string) (*Parameters, bool) {
	switch name {
	case "SMALL":
		return PresetSmall(), true
	case "MEDIUM":
		return PresetMedium(), true
	case "LARGE":
		return PresetLarge(), true
	case "QUICK":
		return PresetQuick(), true
	case "HIGH_QUALITY":
		return PresetHighQuality(), true
	default:
		return nil, false
	}
}

// Validate 在算法开始前校验参数，出错时不产生任何状态
func (p *Parameters) Validate() error {
	if p.PopulationSize < 10 {
		return fmt.Errorf("种群大小不能小于 10")
	}
	if p.MaxGenerations < 1 {
		return fmt.Errorf("最大迭代代数不能小于 1")
	}
	if p.MutationRate < 0 || p.MutationRate > 1 {
		return fmt.Errorf("变异概率必须在 0 和 1 之间")
	}
	if p.CrossoverRate < 0 || p.CrossoverRate > 1 {
		return fmt.Errorf("交叉概率必须在 0 和 1 之间")
	}
	if p.ElitePercentage < 0 || p.ElitePercentage > 1 {
		return fmt.Errorf("精英比例必须在 0 和 1 之间")
	}
	if p.TournamentSize < 2 {
		return fmt.Errorf("锦标赛规模不能小于 2")
	}
	if p.ConvergenceGenerations < 1 {
		return fmt.Errorf("收敛窗口大小不能小于 1")
	}
	return nil
}
