package genetic

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sysu-ecnc-dev/opti-match/backend/internal/domain"
)

func testParams(seed int64) *Parameters {
	p := PresetQuick()
	p.Seed = &seed
	return p
}

func runEngine(t *testing.T, params *Parameters, students []*domain.Student, projects []*domain.Project, preferences []*domain.Preference) *Result {
	t.Helper()
	engine, err := NewEngine(params, students, projects, preferences)
	require.NoError(t, err)
	result, err := engine.Run(context.Background())
	require.NoError(t, err)
	return result
}

func assignmentsByStudent(result *Result) map[int64]int64 {
	out := make(map[int64]int64)
	for _, a := range result.Assignments {
		out[a.StudentID] = a.ProjectID
	}
	return out
}

// 场景: 两个学生都把唯一的项目填为第一志愿，期望全部满足且无任何惩罚
func TestEngineTrivialFeasible(t *testing.T) {
	students := []*domain.Student{
		testStudent(1, 4.0, nil),
		testStudent(2, 4.0, nil),
	}
	projects := []*domain.Project{testProject(100, 1, 2, 0)}
	preferences := []*domain.Preference{
		{StudentID: 1, ProjectID: 100, Rank: 1},
		{StudentID: 2, ProjectID: 100, Rank: 1},
	}

	result := runEngine(t, testParams(1), students, projects, preferences)

	assert.Equal(t, 200.0, result.BestFitness)
	assert.True(t, result.Valid)
	assert.Equal(t, 0.0, result.Breakdown.TotalPenalty())

	assignments := assignmentsByStudent(result)
	assert.Equal(t, int64(100), assignments[1])
	assert.Equal(t, int64(100), assignments[2])
}

// 场景: 三个学生都首选容量为 1 的项目，期望一人进入首选、两人进入次选
func TestEngineCapacitySqueeze(t *testing.T) {
	students := []*domain.Student{
		testStudent(1, 4.0, nil),
		testStudent(2, 4.0, nil),
		testStudent(3, 4.0, nil),
	}
	projects := []*domain.Project{
		testProject(100, 1, 1, 0),
		testProject(101, 1, 2, 0),
	}
	preferences := make([]*domain.Preference, 0)
	for _, studentID := range []int64{1, 2, 3} {
		preferences = append(preferences,
			&domain.Preference{StudentID: studentID, ProjectID: 100, Rank: 1},
			&domain.Preference{StudentID: studentID, ProjectID: 101, Rank: 2},
		)
	}

	result := runEngine(t, testParams(2), students, projects, preferences)

	assert.Equal(t, 260.0, result.BestFitness) // 100 + 80 + 80
	assert.True(t, result.Valid)
	assert.Equal(t, 0.0, result.Breakdown.CapacityPenalty)
	assert.Equal(t, 0.0, result.Breakdown.GPAPenalty)
	assert.Equal(t, 1, result.Best.CountStudentsInProject(100))
	assert.Equal(t, 2, result.Best.CountStudentsInProject(101))
}

// 场景: 学生绩点不足以进入首选项目，期望被分到次选且没有绩点惩罚
func TestEngineGPAGate(t *testing.T) {
	students := []*domain.Student{testStudent(1, 2.0, nil)}
	projects := []*domain.Project{
		testProject(100, 1, 1, 3.0),
		testProject(101, 1, 1, 0),
	}
	preferences := []*domain.Preference{
		{StudentID: 1, ProjectID: 100, Rank: 1},
		{StudentID: 1, ProjectID: 101, Rank: 2},
	}

	result := runEngine(t, testParams(3), students, projects, preferences)

	assignments := assignmentsByStudent(result)
	assert.Equal(t, int64(101), assignments[1])
	assert.Equal(t, 80.0, result.Breakdown.PreferenceScore)
	assert.Equal(t, 0.0, result.Breakdown.GPAPenalty)
}

// 场景: 同伴首选不同的项目，期望两人最终在同一个项目
func TestEnginePartnerColocation(t *testing.T) {
	students := []*domain.Student{
		testStudent(1, 3.5, int64Ptr(2)),
		testStudent(2, 3.5, int64Ptr(1)),
	}
	projects := []*domain.Project{
		testProject(100, 1, 3, 0),
		testProject(101, 1, 3, 0),
	}
	preferences := []*domain.Preference{
		{StudentID: 1, ProjectID: 100, Rank: 1},
		{StudentID: 1, ProjectID: 101, Rank: 3},
		{StudentID: 2, ProjectID: 101, Rank: 1},
		{StudentID: 2, ProjectID: 100, Rank: 3},
	}

	result := runEngine(t, testParams(4), students, projects, preferences)

	assignments := assignmentsByStudent(result)
	assert.Equal(t, assignments[1], assignments[2])
	assert.Contains(t, []int64{100, 101}, assignments[1])
	assert.Equal(t, 0.0, result.Breakdown.PartnerPenalty)
}

// 场景: 一个学生的绩点低于所有项目的要求，期望运行完成并给出提示
func TestEngineUnreachableGPA(t *testing.T) {
	students := []*domain.Student{
		testStudent(1, 1.0, nil),
		testStudent(2, 3.5, nil),
	}
	projects := []*domain.Project{testProject(100, 1, 2, 2.0)}
	preferences := []*domain.Preference{
		{StudentID: 1, ProjectID: 100, Rank: 1},
		{StudentID: 2, ProjectID: 100, Rank: 1},
	}

	result := runEngine(t, testParams(5), students, projects, preferences)

	require.Len(t, result.Advisories, 1)
	assert.False(t, result.Valid)
	assert.Equal(t, 30.0, result.Breakdown.GPAPenalty)
	require.NotNil(t, result.Violations)
	require.Len(t, result.Violations.GPA, 1)
	assert.Equal(t, int64(1), result.Violations.GPA[0].StudentID)

	// 另一个学生的分配仍然是可行的
	assignments := assignmentsByStudent(result)
	assert.Equal(t, int64(100), assignments[2])
}

// 构造确定性的 30 学生 / 6 项目数据集
func buildReproducibilityDataset() ([]*domain.Student, []*domain.Project, []*domain.Preference) {
	projects := make([]*domain.Project, 0, 6)
	requiredGPAs := []float64{0, 0, 2.5, 3.0, 0, 2.8}
	for i := 0; i < 6; i++ {
		projects = append(projects, &domain.Project{
			ID:          int64(101 + i),
			Code:        fmt.Sprintf("P%02d", i+1),
			Name:        fmt.Sprintf("项目 %d", i+1),
			MinCapacity: 3,
			MaxCapacity: 6,
			RequiredGPA: requiredGPAs[i],
		})
	}

	students := make([]*domain.Student, 0, 30)
	for i := 0; i < 30; i++ {
		students = append(students, &domain.Student{
			ID:            int64(i + 1),
			StudentNumber: fmt.Sprintf("2233%04d", i),
			FullName:      fmt.Sprintf("学生%d", i+1),
			GPA:           2.0 + float64(i%21)*0.1,
		})
	}
	// 前四对学生互为同伴
	for i := 0; i < 4; i++ {
		students[2*i].PartnerID = &students[2*i+1].ID
		students[2*i+1].PartnerID = &students[2*i].ID
	}

	preferences := make([]*domain.Preference, 0, 30*5)
	for i, student := range students {
		for j := 0; j < 5; j++ {
			preferences = append(preferences, &domain.Preference{
				StudentID: student.ID,
				ProjectID: projects[(i+j)%6].ID,
				Rank:      int32(j + 1),
			})
		}
	}

	return students, projects, preferences
}

// 固定种子时两次运行的统计流和最终分配应完全一致
func TestEngineReproducibility(t *testing.T) {
	students, projects, preferences := buildReproducibilityDataset()

	seed := int64(12345)
	params := PresetMedium()
	params.Seed = &seed

	first := runEngine(t, params, students, projects, preferences)
	second := runEngine(t, params, students, projects, preferences)

	require.Equal(t, first.Stats, second.Stats)
	require.Equal(t, first.Assignments, second.Assignments)
	assert.Equal(t, first.BestFitness, second.BestFitness)
	assert.Equal(t, first.Generations, second.Generations)
}

// 历史最优在整个运行过程中单调不减
func TestEngineBestEverMonotonicity(t *testing.T) {
	students, projects, preferences := buildReproducibilityDataset()

	result := runEngine(t, testParams(6), students, projects, preferences)

	require.NotEmpty(t, result.Stats)
	for i := 1; i < len(result.Stats); i++ {
		assert.GreaterOrEqual(t, result.Stats[i].BestEverFitness, result.Stats[i-1].BestEverFitness)
	}
	// 最终报告的最优适应度不低于统计流中的历史最优
	assert.GreaterOrEqual(t, result.BestFitness, result.Stats[len(result.Stats)-1].BestEverFitness)
}

// 统计流中的每一代编号连续，染色体长度处处等于学生数
func TestEngineStatsAndChromosomeLength(t *testing.T) {
	students, projects, preferences := buildReproducibilityDataset()

	result := runEngine(t, testParams(7), students, projects, preferences)

	for i, s := range result.Stats {
		assert.Equal(t, int32(i), s.Generation)
	}
	assert.Equal(t, len(students), result.Best.Length())
	assert.Len(t, result.Assignments, len(students))
}

// 配置了目标适应度时达到即停
func TestEngineTargetFitnessStopsEarly(t *testing.T) {
	students := []*domain.Student{
		testStudent(1, 4.0, nil),
		testStudent(2, 4.0, nil),
	}
	projects := []*domain.Project{testProject(100, 1, 2, 0)}
	preferences := []*domain.Preference{
		{StudentID: 1, ProjectID: 100, Rank: 1},
		{StudentID: 2, ProjectID: 100, Rank: 1},
	}

	params := testParams(8)
	target := 200.0
	params.TargetFitness = &target

	result := runEngine(t, params, students, projects, preferences)

	assert.Equal(t, int32(1), result.Generations)
	assert.Equal(t, 200.0, result.BestFitness)
}

// 取消后返回已完成代数的结果，不报错
func TestEngineCancellation(t *testing.T) {
	students, projects, preferences := buildReproducibilityDataset()

	engine, err := NewEngine(testParams(9), students, projects, preferences)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := engine.Run(ctx)
	require.NoError(t, err)
	assert.True(t, result.Cancelled)
	assert.Empty(t, result.Stats)
	assert.Len(t, result.Assignments, len(students))
}

func TestEngineRejectsInconsistentData(t *testing.T) {
	students := []*domain.Student{testStudent(1, 4.0, nil)}
	projects := []*domain.Project{testProject(100, 1, 1, 0)}

	// 志愿指向不存在的项目
	_, err := NewEngine(testParams(10), students, projects, []*domain.Preference{
		{StudentID: 1, ProjectID: 999, Rank: 1},
	})
	assert.Error(t, err)

	// 志愿指向不存在的学生
	_, err = NewEngine(testParams(11), students, projects, []*domain.Preference{
		{StudentID: 999, ProjectID: 100, Rank: 1},
	})
	assert.Error(t, err)

	// 同伴指向不存在的学生
	broken := []*domain.Student{testStudent(1, 4.0, int64Ptr(999))}
	_, err = NewEngine(testParams(12), broken, projects, nil)
	assert.Error(t, err)

	// 空数据
	_, err = NewEngine(testParams(13), nil, projects, nil)
	assert.Error(t, err)
	_, err = NewEngine(testParams(14), students, nil, nil)
	assert.Error(t, err)
}

func TestEngineRejectsInvalidParameters(t *testing.T) {
	students := []*domain.Student{testStudent(1, 4.0, nil)}
	projects := []*domain.Project{testProject(100, 1, 1, 0)}

	params := DefaultParameters()
	params.PopulationSize = 5
	_, err := NewEngine(params, students, projects, nil)
	assert.Error(t, err)
}
