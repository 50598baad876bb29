package domain

import "time"

type AlgorithmRun struct {
	ID              int64     `json:"id"`
	RunTimestamp    time.Time `json:"runTimestamp"`
	PopulationSize  int32     `json:"populationSize"`
	Generations     int32     `json:"generations"` // 实际执行的代数
	MutationRate    float64   `json:"mutationRate"`
	CrossoverRate   float64   `json:"crossoverRate"`
	BestFitness     float64   `json:"bestFitness"`
	ExecutionTimeMs int64     `json:"executionTimeMs"`
}

type Assignment struct {
	ID             int64  `json:"id"`
	RunID          int64  `json:"runID"`
	StudentID      int64  `json:"studentID"`
	ProjectID      int64  `json:"projectID"`
	PreferenceRank *int32 `json:"preferenceRank"` // 为 nil 时表示该项目不在学生的志愿中
}

func (a *Assignment) InPreferences() bool {
	return a.PreferenceRank != nil
}

func (a *Assignment) SatisfactionScore() int {
	if a.PreferenceRank == nil {
		return WeightNoPreference
	}
	return WeightForRank(*a.PreferenceRank)
}

type GenerationStats struct {
	ID                int64   `json:"id"`
	RunID             int64   `json:"runID"`
	Generation        int32   `json:"generation"`
	BestFitness       float64 `json:"bestFitness"`
	AverageFitness    float64 `json:"averageFitness"`
	WorstFitness      float64 `json:"worstFitness"`
	StandardDeviation float64 `json:"standardDeviation"`
	ValidCount        int32   `json:"validCount"`
	BestEverFitness   float64 `json:"bestEverFitness"`
}
