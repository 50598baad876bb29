package utils

import (
	"fmt"

	"github.com/sysu-ecnc-dev/opti-match/backend/internal/domain"
)

// ValidateProjectCapacity 检查项目的容量区间和绩点要求是否合法
func ValidateProjectCapacity(project *domain.Project) error {
	if project.MinCapacity < 1 {
		return fmt.Errorf("项目最小容量不能小于 1")
	}
	if project.MaxCapacity < project.MinCapacity {
		return fmt.Errorf("项目最大容量不能小于最小容量")
	}
	if project.RequiredGPA < 0 {
		return fmt.Errorf("项目绩点要求不能为负数")
	}
	return nil
}

// ValidateStudentGPA 检查学生绩点是否在 [0.00, 4.00] 之间
func ValidateStudentGPA(student *domain.Student) error {
	if student.GPA < 0 || student.GPA > 4 {
		return fmt.Errorf("学生绩点必须在 0.00 和 4.00 之间")
	}
	return nil
}

// ValidatePreferences 检查一组志愿内部是否一致
// 每个学生的排名不能重复，同一个项目不能出现多次，排名必须在 1 到 5 之间
func ValidatePreferences(preferences []*domain.Preference) error {
	seenRanks := make(map[int64]map[int32]bool)
	seenProjects := make(map[int64]map[int64]bool)

	for _, pref := range preferences {
		if pref.Rank < 1 || pref.Rank > 5 {
			return fmt.Errorf("学生 %d 的志愿排名 %d 不在 1 到 5 之间", pref.StudentID, pref.Rank)
		}

		if _, exists := seenRanks[pref.StudentID]; !exists {
			seenRanks[pref.StudentID] = make(map[int32]bool)
			seenProjects[pref.StudentID] = make(map[int64]bool)
		}

		if seenRanks[pref.StudentID][pref.Rank] {
			return fmt.Errorf("学生 %d 的志愿排名 %d 重复", pref.StudentID, pref.Rank)
		}
		seenRanks[pref.StudentID][pref.Rank] = true

		if seenProjects[pref.StudentID][pref.ProjectID] {
			return fmt.Errorf("学生 %d 对项目 %d 的志愿重复", pref.StudentID, pref.ProjectID)
		}
		seenProjects[pref.StudentID][pref.ProjectID] = true
	}

	return nil
}

// FindAsymmetricPartnerships 列出同伴关系不对称的学生 ID
// 这类数据不会被自动修复，只用于告警
func FindAsymmetricPartnerships(students []*domain.Student) []int64 {
	byID := make(map[int64]*domain.Student)
	for _, student := range students {
		byID[student.ID] = student
	}

	asymmetric := make([]int64, 0)
	for _, student := range students {
		if !student.HasPartner() {
			continue
		}
		partner, exists := byID[*student.PartnerID]
		if !exists || partner.PartnerID == nil || *partner.PartnerID != student.ID {
			asymmetric = append(asymmetric, student.ID)
		}
	}
	return asymmetric
}
