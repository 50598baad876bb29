package genetic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sysu-ecnc-dev/opti-match/backend/internal/domain"
)

func int64Ptr(v int64) *int64 {
	return &v
}

func testStudent(id int64, gpa float64, partnerID *int64) *domain.Student {
	return &domain.Student{
		ID:            id,
		StudentNumber: "22330000",
		FullName:      "测试学生",
		GPA:           gpa,
		PartnerID:     partnerID,
	}
}

func testProject(id int64, minCap, maxCap int32, requiredGPA float64) *domain.Project {
	return &domain.Project{
		ID:          id,
		Code:        "TEST",
		Name:        "测试项目",
		MinCapacity: minCap,
		MaxCapacity: maxCap,
		RequiredGPA: requiredGPA,
	}
}

func TestFitnessPreferenceScore(t *testing.T) {
	students := []*domain.Student{
		testStudent(1, 4.0, nil),
		testStudent(2, 4.0, nil),
		testStudent(3, 4.0, nil),
	}
	projects := []*domain.Project{
		testProject(10, 1, 10, 0),
		testProject(11, 1, 10, 0),
	}
	preferences := []*domain.Preference{
		{StudentID: 1, ProjectID: 10, Rank: 1},
		{StudentID: 2, ProjectID: 10, Rank: 3},
		// 学生 3 没有填任何志愿
	}

	e := NewFitnessEvaluator(students, projects, preferences)
	c := NewChromosomeFromAssignments([]int64{10, 10, 11})

	assert.Equal(t, 160.0, e.PreferenceScore(c)) // 100 + 60 + 0
}

func TestFitnessPreferenceScoreBound(t *testing.T) {
	students := []*domain.Student{
		testStudent(1, 4.0, nil),
		testStudent(2, 4.0, nil),
	}
	projects := []*domain.Project{testProject(10, 1, 10, 0)}
	preferences := []*domain.Preference{
		{StudentID: 1, ProjectID: 10, Rank: 1},
		{StudentID: 2, ProjectID: 10, Rank: 1},
	}

	e := NewFitnessEvaluator(students, projects, preferences)
	c := NewChromosomeFromAssignments([]int64{10, 10})

	assert.LessOrEqual(t, e.PreferenceScore(c), e.TheoreticalMaxFitness())
	assert.Equal(t, 200.0, e.TheoreticalMaxFitness())
}

func TestFitnessCapacityPenaltyZeroIffWithinBand(t *testing.T) {
	students := []*domain.Student{
		testStudent(1, 4.0, nil),
		testStudent(2, 4.0, nil),
		testStudent(3, 4.0, nil),
	}
	projects := []*domain.Project{
		testProject(10, 1, 2, 0),
		testProject(11, 1, 2, 0),
	}

	e := NewFitnessEvaluator(students, projects, nil)

	// 每个项目人数都在区间内，惩罚为 0
	within := NewChromosomeFromAssignments([]int64{10, 10, 11})
	assert.Equal(t, 0.0, e.CapacityPenalty(within))

	// 项目 10 超员一人且项目 11 缺员一人
	overflow := NewChromosomeFromAssignments([]int64{10, 10, 10})
	assert.Equal(t, 100.0, e.CapacityPenalty(overflow)) // 50*1 超员 + 50*1 缺员
}

func TestFitnessGPAPenalty(t *testing.T) {
	students := []*domain.Student{
		testStudent(1, 2.0, nil),
		testStudent(2, 3.5, nil),
	}
	projects := []*domain.Project{testProject(10, 1, 10, 3.0)}

	e := NewFitnessEvaluator(students, projects, nil)
	c := NewChromosomeFromAssignments([]int64{10, 10})

	assert.Equal(t, 30.0, e.GPAPenalty(c))
}

func TestFitnessPartnerPenaltyCountedOnce(t *testing.T) {
	students := []*domain.Student{
		testStudent(1, 4.0, int64Ptr(2)),
		testStudent(2, 4.0, int64Ptr(1)),
	}
	projects := []*domain.Project{
		testProject(10, 1, 10, 0),
		testProject(11, 1, 10, 0),
	}

	e := NewFitnessEvaluator(students, projects, nil)

	separated := NewChromosomeFromAssignments([]int64{10, 11})
	assert.Equal(t, 40.0, e.PartnerPenalty(separated))

	together := NewChromosomeFromAssignments([]int64{10, 10})
	assert.Equal(t, 0.0, e.PartnerPenalty(together))
}

func TestFitnessEvaluateWritesCache(t *testing.T) {
	students := []*domain.Student{testStudent(1, 4.0, nil)}
	projects := []*domain.Project{testProject(10, 1, 1, 0)}
	preferences := []*domain.Preference{{StudentID: 1, ProjectID: 10, Rank: 1}}

	e := NewFitnessEvaluator(students, projects, preferences)
	c := NewChromosomeFromAssignments([]int64{10})

	fitness, err := e.Evaluate(c)
	require.NoError(t, err)
	assert.Equal(t, 100.0, fitness)
	assert.True(t, c.FitnessEvaluated())
	assert.Equal(t, 100.0, c.Fitness())
}

func TestFitnessEvaluateRejectsWrongLength(t *testing.T) {
	students := []*domain.Student{testStudent(1, 4.0, nil)}
	projects := []*domain.Project{testProject(10, 1, 1, 0)}

	e := NewFitnessEvaluator(students, projects, nil)
	c := NewChromosomeFromAssignments([]int64{10, 10})

	_, err := e.Evaluate(c)
	assert.Error(t, err)
}

func TestFitnessBreakdownMatchesEvaluate(t *testing.T) {
	students := []*domain.Student{
		testStudent(1, 2.0, int64Ptr(2)),
		testStudent(2, 4.0, int64Ptr(1)),
	}
	projects := []*domain.Project{
		testProject(10, 1, 1, 3.0),
		testProject(11, 1, 1, 0),
	}
	preferences := []*domain.Preference{
		{StudentID: 1, ProjectID: 10, Rank: 1},
		{StudentID: 2, ProjectID: 11, Rank: 2},
	}

	e := NewFitnessEvaluator(students, projects, preferences)
	c := NewChromosomeFromAssignments([]int64{10, 11})

	breakdown := e.Breakdown(c)
	fitness, err := e.Evaluate(c)
	require.NoError(t, err)

	assert.Equal(t, fitness, breakdown.TotalFitness)
	assert.Equal(t, 180.0, breakdown.PreferenceScore)
	assert.Equal(t, 30.0, breakdown.GPAPenalty)      // 学生 1 绩点不足
	assert.Equal(t, 40.0, breakdown.PartnerPenalty)  // 同伴被拆开
	assert.Equal(t, 0.0, breakdown.CapacityPenalty)
	assert.Equal(t, 70.0, breakdown.TotalPenalty())
}

func TestFitnessPreferenceDistribution(t *testing.T) {
	students := []*domain.Student{
		testStudent(1, 4.0, nil),
		testStudent(2, 4.0, nil),
		testStudent(3, 4.0, nil),
	}
	projects := []*domain.Project{
		testProject(10, 1, 10, 0),
		testProject(11, 1, 10, 0),
	}
	preferences := []*domain.Preference{
		{StudentID: 1, ProjectID: 10, Rank: 1},
		{StudentID: 2, ProjectID: 10, Rank: 5},
	}

	e := NewFitnessEvaluator(students, projects, preferences)
	c := NewChromosomeFromAssignments([]int64{10, 10, 11})

	distribution := e.PreferenceDistribution(c)
	assert.Equal(t, 1, distribution[1])
	assert.Equal(t, 1, distribution[5])
	assert.Equal(t, 1, distribution[0]) // 学生 3 没有志愿
}

func TestFitnessPreferenceRankAccessor(t *testing.T) {
	students := []*domain.Student{testStudent(1, 4.0, nil)}
	projects := []*domain.Project{testProject(10, 1, 1, 0)}
	preferences := []*domain.Preference{{StudentID: 1, ProjectID: 10, Rank: 2}}

	e := NewFitnessEvaluator(students, projects, preferences)

	rank := e.PreferenceRank(1, 10)
	require.NotNil(t, rank)
	assert.Equal(t, int32(2), *rank)
	assert.Nil(t, e.PreferenceRank(1, 99))
}
