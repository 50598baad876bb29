package genetic

import (
	"math/rand"

	"github.com/sysu-ecnc-dev/opti-match/backend/internal/domain"
)

// ConstraintChecker 检查并尽力修复染色体中的约束违反
// 三类约束:
// 		1. 容量: 每个项目的人数在 [min, max] 之间
// 		2. 绩点: 学生的绩点不低于所分配项目的要求
// 		3. 同伴: 结对的两个学生必须分到同一个项目
type ConstraintChecker struct {
	students []*domain.Student
	projects []*domain.Project

	projectByID    map[int64]*domain.Project
	studentToIndex map[int64]int
	projectIDs     []int64

	rng *rand.Rand
}

type CapacityViolation struct {
	ProjectID   int64 `json:"projectID"`
	ActualCount int   `json:"actualCount"`
	MinCapacity int32 `json:"minCapacity"`
	MaxCapacity int32 `json:"maxCapacity"`
	Underflow   bool  `json:"underflow"`
}

type GPAViolation struct {
	StudentID   int64   `json:"studentID"`
	ProjectID   int64   `json:"projectID"`
	StudentGPA  float64 `json:"studentGPA"`
	RequiredGPA float64 `json:"requiredGPA"`
}

type PartnerViolation struct {
	StudentID      int64 `json:"studentID"`
	PartnerID      int64 `json:"partnerID"`
	StudentProject int64 `json:"studentProject"`
	PartnerProject int64 `json:"partnerProject"`
}

type ConstraintViolations struct {
	Capacity []CapacityViolation `json:"capacity"`
	GPA      []GPAViolation      `json:"gpa"`
	Partner  []PartnerViolation  `json:"partner"`
}

func (v *ConstraintViolations) Total() int {
	return len(v.Capacity) + len(v.GPA) + len(v.Partner)
}

func (v *ConstraintViolations) HasViolations() bool {
	return v.Total() > 0
}

func NewConstraintChecker(students []*domain.Student, projects []*domain.Project, rng *rand.Rand) *ConstraintChecker {
	cc := &ConstraintChecker{
		students:       students,
		projects:       projects,
		projectByID:    make(map[int64]*domain.Project),
		studentToIndex: make(map[int64]int),
		projectIDs:     make([]int64, 0, len(projects)),
		rng:            rng,
	}

	for _, project := range projects {
		cc.projectByID[project.ID] = project
		cc.projectIDs = append(cc.projectIDs, project.ID)
	}
	for i, student := range students {
		cc.studentToIndex[student.ID] = i
	}

	return cc
}

func (cc *ConstraintChecker) ProjectIDs() []int64 {
	out := make([]int64, len(cc.projectIDs))
	copy(out, cc.projectIDs)
	return out
}

// CheckAll 检查所有约束并更新染色体的合法性标记
func (cc *ConstraintChecker) CheckAll(c *Chromosome) bool {
	valid := cc.CheckCapacity(c) && cc.CheckGPA(c) && cc.CheckPartners(c)
	c.SetValid(valid)
	return valid
}

func (cc *ConstraintChecker) CheckCapacity(c *Chromosome) bool {
	counts := cc.countStudentsPerProject(c)
	for _, project := range cc.projects {
		if !project.WithinCapacity(counts[project.ID]) {
			return false
		}
	}
	return true
}

func (cc *ConstraintChecker) CheckGPA(c *Chromosome) bool {
	for i := 0; i < c.Length(); i++ {
		project := cc.projectByID[c.Assignment(i)]
		if project != nil && !project.MeetsGPARequirement(cc.students[i].GPA) {
			return false
		}
	}
	return true
}

func (cc *ConstraintChecker) CheckPartners(c *Chromosome) bool {
	for i := 0; i < c.Length(); i++ {
		student := cc.students[i]
		if !student.HasPartner() {
			continue
		}
		partnerIndex, exists := cc.studentToIndex[*student.PartnerID]
		if !exists {
			continue
		}
		if c.Assignment(i) != c.Assignment(partnerIndex) {
			return false
		}
	}
	return true
}

// Violations 返回所有约束违反的明细
// 同伴违反只在同伴下标大于自身下标时记录一次
func (cc *ConstraintChecker) Violations(c *Chromosome) *ConstraintViolations {
	violations := &ConstraintViolations{
		Capacity: make([]CapacityViolation, 0),
		GPA:      make([]GPAViolation, 0),
		Partner:  make([]PartnerViolation, 0),
	}

	counts := cc.countStudentsPerProject(c)
	for _, project := range cc.projects {
		count := counts[project.ID]
		if count < int(project.MinCapacity) {
			violations.Capacity = append(violations.Capacity, CapacityViolation{
				ProjectID:   project.ID,
				ActualCount: count,
				MinCapacity: project.MinCapacity,
				MaxCapacity: project.MaxCapacity,
				Underflow:   true,
			})
		} else if count > int(project.MaxCapacity) {
			violations.Capacity = append(violations.Capacity, CapacityViolation{
				ProjectID:   project.ID,
				ActualCount: count,
				MinCapacity: project.MinCapacity,
				MaxCapacity: project.MaxCapacity,
				Underflow:   false,
			})
		}
	}

	for i := 0; i < c.Length(); i++ {
		student := cc.students[i]
		project := cc.projectByID[c.Assignment(i)]
		if project != nil && !project.MeetsGPARequirement(student.GPA) {
			violations.GPA = append(violations.GPA, GPAViolation{
				StudentID:   student.ID,
				ProjectID:   project.ID,
				StudentGPA:  student.GPA,
				RequiredGPA: project.RequiredGPA,
			})
		}
	}

	for i := 0; i < c.Length(); i++ {
		student := cc.students[i]
		if !student.HasPartner() {
			continue
		}
		partnerIndex, exists := cc.studentToIndex[*student.PartnerID]
		if !exists || partnerIndex <= i {
			continue
		}
		if c.Assignment(i) != c.Assignment(partnerIndex) {
			violations.Partner = append(violations.Partner, PartnerViolation{
				StudentID:      student.ID,
				PartnerID:      *student.PartnerID,
				StudentProject: c.Assignment(i),
				PartnerProject: c.Assignment(partnerIndex),
			})
		}
	}

	return violations
}

// Repair 按 同伴 -> 绩点 -> 容量 的顺序尽力修复
// 先合并同伴可能顺带解决绩点问题，绩点修复挪动人数后再由容量修复纠正
// 修复不保证成功，残留的违反由适应度惩罚承担
func (cc *ConstraintChecker) Repair(c *Chromosome) bool {
	success := cc.RepairPartners(c)
	success = cc.RepairGPA(c) && success
	success = cc.RepairCapacity(c) && success

	cc.CheckAll(c)
	return success
}

// RepairPartners 把被拆开的同伴合并到同一个项目
// 优先采用绩点较高一方当前的项目，平分时采用下标较小一方的项目
func (cc *ConstraintChecker) RepairPartners(c *Chromosome) bool {
	for i := 0; i < c.Length(); i++ {
		student := cc.students[i]
		if !student.HasPartner() {
			continue
		}
		partnerIndex, exists := cc.studentToIndex[*student.PartnerID]
		if !exists || partnerIndex <= i {
			continue
		}

		studentProject := c.Assignment(i)
		partnerProject := c.Assignment(partnerIndex)
		if studentProject == partnerProject {
			continue
		}

		partner := cc.students[partnerIndex]
		var chosenProject int64
		if student.GPA >= partner.GPA {
			chosenProject = studentProject
		} else {
			chosenProject = partnerProject
		}

		project := cc.projectByID[chosenProject]
		if project == nil {
			continue
		}

		if project.MeetsGPARequirement(student.GPA) && project.MeetsGPARequirement(partner.GPA) {
			c.SetAssignment(i, chosenProject)
			c.SetAssignment(partnerIndex, chosenProject)
			continue
		}

		// 选出的项目不能同时满足两人的绩点，随机换一个两人都满足的项目
		if validProject, ok := cc.findValidProjectForBoth(student, partner); ok {
			c.SetAssignment(i, validProject)
			c.SetAssignment(partnerIndex, validProject)
		}
		// 没有这样的项目时保持原状
	}
	return true
}

// RepairGPA 把绩点不达标的学生挪到随机一个满足其绩点的项目
// 学生有同伴时同伴一起挪，保持同伴约束不被破坏
func (cc *ConstraintChecker) RepairGPA(c *Chromosome) bool {
	allRepaired := true

	for i := 0; i < c.Length(); i++ {
		student := cc.students[i]
		project := cc.projectByID[c.Assignment(i)]
		if project == nil || project.MeetsGPARequirement(student.GPA) {
			continue
		}

		validProject, ok := cc.findValidProjectForStudent(student)
		if !ok {
			// 没有任何项目满足该学生的绩点，留给惩罚机制处理
			allRepaired = false
			continue
		}

		c.SetAssignment(i, validProject)
		if student.HasPartner() {
			if partnerIndex, exists := cc.studentToIndex[*student.PartnerID]; exists {
				c.SetAssignment(partnerIndex, validProject)
			}
		}
	}

	return allRepaired
}

// RepairCapacity 在超员项目和缺员项目之间搬动学生，最多迭代 2N 次
func (cc *ConstraintChecker) RepairCapacity(c *Chromosome) bool {
	maxIterations := len(cc.students) * 2

	for iterations := 0; iterations < maxIterations; iterations++ {
		counts := cc.countStudentsPerProject(c)

		overflowProjects := make([]int64, 0)
		underflowProjects := make([]int64, 0)
		for _, project := range cc.projects {
			count := counts[project.ID]
			if count > int(project.MaxCapacity) {
				overflowProjects = append(overflowProjects, project.ID)
			} else if count < int(project.MinCapacity) {
				underflowProjects = append(underflowProjects, project.ID)
			}
		}

		if len(overflowProjects) == 0 && len(underflowProjects) == 0 {
			return true
		}

		// 确定性搬动: 从超员项目的高下标开始，跳过有同伴的学生，
		// 尝试搬到任意一个满足其绩点的缺员项目
		moved := false
		for _, overflowProjectID := range overflowProjects {
			studentsInProject := c.StudentsInProject(overflowProjectID)
			overflowProject := cc.projectByID[overflowProjectID]
			excess := len(studentsInProject) - int(overflowProject.MaxCapacity)

			for j := 0; j < excess && j < len(studentsInProject); j++ {
				studentIndex := studentsInProject[len(studentsInProject)-1-j]
				student := cc.students[studentIndex]

				// 有同伴的学生不单独搬动
				if student.HasPartner() {
					continue
				}

				for _, underflowProjectID := range underflowProjects {
					if cc.projectByID[underflowProjectID].MeetsGPARequirement(student.GPA) {
						c.SetAssignment(studentIndex, underflowProjectID)
						moved = true
						break
					}
				}
				if moved {
					break
				}
			}
			if moved {
				break
			}
		}

		// 确定性搬动无果时，从第一个超员项目中随机挑一个学生，若其无同伴，
		// 则搬到随机一个绩点满足且未满员的项目；抽到有同伴的学生时本轮不搬动
		if !moved && len(overflowProjects) > 0 {
			studentsInProject := c.StudentsInProject(overflowProjects[0])
			if len(studentsInProject) > 0 {
				studentIndex := studentsInProject[cc.rng.Intn(len(studentsInProject))]
				student := cc.students[studentIndex]
				if !student.HasPartner() {
					if newProject, ok := cc.findValidProjectWithCapacity(student, c); ok {
						c.SetAssignment(studentIndex, newProject)
						moved = true
					}
				}
			}
		}
	}

	return cc.CheckCapacity(c)
}

func (cc *ConstraintChecker) countStudentsPerProject(c *Chromosome) map[int64]int {
	counts := make(map[int64]int)
	for i := 0; i < c.Length(); i++ {
		counts[c.Assignment(i)]++
	}
	return counts
}

func (cc *ConstraintChecker) findValidProjectForStudent(student *domain.Student) (int64, bool) {
	validProjects := make([]int64, 0)
	for _, project := range cc.projects {
		if project.MeetsGPARequirement(student.GPA) {
			validProjects = append(validProjects, project.ID)
		}
	}
	if len(validProjects) == 0 {
		return 0, false
	}
	return validProjects[cc.rng.Intn(len(validProjects))], true
}

func (cc *ConstraintChecker) findValidProjectForBoth(student1, student2 *domain.Student) (int64, bool) {
	minGPA := student1.GPA
	if student2.GPA < minGPA {
		minGPA = student2.GPA
	}

	validProjects := make([]int64, 0)
	for _, project := range cc.projects {
		if project.MeetsGPARequirement(minGPA) {
			validProjects = append(validProjects, project.ID)
		}
	}
	if len(validProjects) == 0 {
		return 0, false
	}
	return validProjects[cc.rng.Intn(len(validProjects))], true
}

func (cc *ConstraintChecker) findValidProjectWithCapacity(student *domain.Student, c *Chromosome) (int64, bool) {
	counts := cc.countStudentsPerProject(c)

	validProjects := make([]int64, 0)
	for _, project := range cc.projects {
		if project.MeetsGPARequirement(student.GPA) && counts[project.ID] < int(project.MaxCapacity) {
			validProjects = append(validProjects, project.ID)
		}
	}
	if len(validProjects) == 0 {
		return 0, false
	}
	return validProjects[cc.rng.Intn(len(validProjects))], true
}
