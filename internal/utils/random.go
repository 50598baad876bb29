package utils

import (
	"fmt"
	"math/rand"

	"github.com/mozillazg/go-pinyin"
	"github.com/sysu-ecnc-dev/opti-match/backend/internal/domain"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "霞", "飞", "玲", "超",
	"华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌", "庆",
	"建", "丹", "彬", "凤", "旭", "宁", "乐", "成", "欣", "悦",
}

func GenerateRandomChineseName(rng *rand.Rand) string {
	surname := commonSurnames[rng.Intn(len(commonSurnames))]
	nameLength := rng.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rng.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

var digits = "0123456789"

// GenerateEmailFromChineseName 用姓名的拼音加上随机数字生成邮箱前缀
func GenerateEmailFromChineseName(chineseName string, emailDomainName string, rng *rand.Rand) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	local := ""

	for _, py := range pinyinArray {
		local += py
	}

	digitsLength := rng.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		local += string(digits[rng.Intn(len(digits))])
	}

	return local + "@" + emailDomainName
}

// GenerateRandomStudentNumber 生成形如 22336123 的学号
func GenerateRandomStudentNumber(rng *rand.Rand) string {
	return fmt.Sprintf("2233%04d", rng.Intn(10000))
}

// GenerateRandomGPA 生成 [1.50, 4.00] 之间保留两位小数的绩点
func GenerateRandomGPA(rng *rand.Rand) float64 {
	return float64(150+rng.Intn(251)) / 100
}

// GenerateRandomStudent 生成一个随机学生，同伴关系由调用方另行建立
func GenerateRandomStudent(emailDomainName string, rng *rand.Rand) *domain.Student {
	fullName := GenerateRandomChineseName(rng)
	return &domain.Student{
		StudentNumber: GenerateRandomStudentNumber(rng),
		FullName:      fullName,
		Email:         GenerateEmailFromChineseName(fullName, emailDomainName, rng),
		GPA:           GenerateRandomGPA(rng),
	}
}

// GenerateRandomPreferences 为学生生成 count 个互不相同的志愿，排名从 1 开始
func GenerateRandomPreferences(studentID int64, projectIDs []int64, count int, rng *rand.Rand) []*domain.Preference {
	if count > len(projectIDs) {
		count = len(projectIDs)
	}

	// Fisher-Yates 洗牌后取前 count 个项目
	shuffled := make([]int64, len(projectIDs))
	copy(shuffled, projectIDs)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}

	preferences := make([]*domain.Preference, 0, count)
	for i := 0; i < count; i++ {
		preferences = append(preferences, &domain.Preference{
			StudentID: studentID,
			ProjectID: shuffled[i],
			Rank:      int32(i + 1),
		})
	}
	return preferences
}
