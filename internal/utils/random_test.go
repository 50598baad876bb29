package utils

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRandomStudent(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	student := GenerateRandomStudent("mail2.sysu.edu.cn", rng)

	assert.NotEmpty(t, student.FullName)
	assert.True(t, strings.HasSuffix(student.Email, "@mail2.sysu.edu.cn"))
	assert.Len(t, student.StudentNumber, 8)
	assert.GreaterOrEqual(t, student.GPA, 1.5)
	assert.LessOrEqual(t, student.GPA, 4.0)
	assert.Nil(t, student.PartnerID)
}

func TestGenerateEmailIsASCII(t *testing.T) {
	rng := rand.New(rand.NewSource(2))

	email := GenerateEmailFromChineseName("王小明", "example.com", rng)

	local := strings.TrimSuffix(email, "@example.com")
	require.NotEmpty(t, local)
	for _, r := range local {
		assert.True(t, (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'), "非法字符: %c", r)
	}
}

func TestGenerateRandomPreferences(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	projectIDs := []int64{10, 11, 12, 13, 14, 15}

	preferences := GenerateRandomPreferences(7, projectIDs, 5, rng)

	require.Len(t, preferences, 5)
	seen := make(map[int64]bool)
	for i, pref := range preferences {
		assert.Equal(t, int64(7), pref.StudentID)
		assert.Equal(t, int32(i+1), pref.Rank)
		assert.False(t, seen[pref.ProjectID], "项目重复")
		seen[pref.ProjectID] = true
		assert.Contains(t, projectIDs, pref.ProjectID)
	}
}

func TestGenerateRandomPreferencesCapsAtProjectCount(t *testing.T) {
	rng := rand.New(rand.NewSource(4))

	preferences := GenerateRandomPreferences(1, []int64{10, 11}, 5, rng)

	assert.Len(t, preferences, 2)
}
