package seed

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/sysu-ecnc-dev/opti-match/backend/internal/config"
	"github.com/sysu-ecnc-dev/opti-match/backend/internal/domain"
	"github.com/sysu-ecnc-dev/opti-match/backend/internal/repository"
	"github.com/sysu-ecnc-dev/opti-match/backend/internal/utils"
)

// 演示用的项目目录
var demoProjects = []*domain.Project{
	{Code: "WEB01", Name: "校园二手交易平台", Description: "面向校内学生的二手物品交易网站", MinCapacity: 3, MaxCapacity: 6, RequiredGPA: 0},
	{Code: "AI02", Name: "课程推荐系统", Description: "基于历史选课数据的课程推荐", MinCapacity: 3, MaxCapacity: 6, RequiredGPA: 3.0},
	{Code: "SYS03", Name: "分布式存储引擎", Description: "实现一个简化的分布式键值存储", MinCapacity: 2, MaxCapacity: 5, RequiredGPA: 3.3},
	{Code: "APP04", Name: "校园导航小程序", Description: "校园建筑和教室的导航小程序", MinCapacity: 3, MaxCapacity: 6, RequiredGPA: 0},
	{Code: "SEC05", Name: "网络流量分析工具", Description: "捕获并可视化校园网流量", MinCapacity: 2, MaxCapacity: 5, RequiredGPA: 2.5},
	{Code: "DATA06", Name: "图书馆数据看板", Description: "图书馆借阅数据的统计看板", MinCapacity: 3, MaxCapacity: 6, RequiredGPA: 0},
}

// Seed 向数据库写入演示数据: 项目目录、随机学生、随机志愿和若干同伴对
func Seed(cfg *config.Config, repo *repository.Repository) error {
	rng := rand.New(rand.NewSource(42)) // 固定种子，方便重复演示

	projects := make([]*domain.Project, 0, cfg.Seed.ProjectCount)
	for i, project := range demoProjects {
		if i >= cfg.Seed.ProjectCount {
			break
		}
		if err := repo.CreateProject(project); err != nil {
			return fmt.Errorf("无法创建项目 %s: %w", project.Code, err)
		}
		projects = append(projects, project)
	}
	slog.Info("项目创建完成", "count", len(projects))

	projectIDs := make([]int64, 0, len(projects))
	for _, project := range projects {
		projectIDs = append(projectIDs, project.ID)
	}

	students := make([]*domain.Student, 0, cfg.Seed.StudentCount)
	for i := 0; i < cfg.Seed.StudentCount; i++ {
		student := utils.GenerateRandomStudent(cfg.EmailDomain, rng)
		if err := repo.CreateStudent(student); err != nil {
			return fmt.Errorf("无法创建学生 %s: %w", student.FullName, err)
		}
		students = append(students, student)
	}
	slog.Info("学生创建完成", "count", len(students))

	// 一部分学生结成同伴对，关系必须对称
	pairCount := len(students) / 8
	for i := 0; i < pairCount; i++ {
		first := students[2*i]
		second := students[2*i+1]
		first.PartnerID = &second.ID
		second.PartnerID = &first.ID
		if err := repo.UpdateStudent(first); err != nil {
			return fmt.Errorf("无法更新学生 %d 的同伴: %w", first.ID, err)
		}
		if err := repo.UpdateStudent(second); err != nil {
			return fmt.Errorf("无法更新学生 %d 的同伴: %w", second.ID, err)
		}
	}
	slog.Info("同伴关系创建完成", "pairs", pairCount)

	for _, student := range students {
		count := 3 + rng.Intn(3) // 每个学生填 3 到 5 个志愿
		preferences := utils.GenerateRandomPreferences(student.ID, projectIDs, count, rng)
		if err := repo.ReplaceStudentPreferences(student.ID, preferences); err != nil {
			return fmt.Errorf("无法写入学生 %d 的志愿: %w", student.ID, err)
		}
	}
	slog.Info("志愿创建完成")

	return nil
}
