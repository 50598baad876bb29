package domain

type Project struct {
	ID          int64   `json:"id"`
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	MinCapacity int32   `json:"minCapacity"`
	MaxCapacity int32   `json:"maxCapacity"`
	RequiredGPA float64 `json:"requiredGPA"`
}

func (p *Project) WithinCapacity(count int) bool {
	return count >= int(p.MinCapacity) && count <= int(p.MaxCapacity)
}

func (p *Project) MeetsGPARequirement(gpa float64) bool {
	return gpa >= p.RequiredGPA
}
