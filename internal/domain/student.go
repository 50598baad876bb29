package domain

type Student struct {
	ID            int64   `json:"id"`
	StudentNumber string  `json:"studentNumber"`
	FullName      string  `json:"fullName"`
	Email         string  `json:"email"`
	GPA           float64 `json:"gpa"`
	PartnerID     *int64  `json:"partnerID"` // 为 nil 时表示该学生没有结对同伴
}

func (s *Student) HasPartner() bool {
	return s.PartnerID != nil
}
