package handler

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/opti-match/backend/internal/domain"
	"github.com/sysu-ecnc-dev/opti-match/backend/internal/utils"
)

func (h *Handler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StudentNumber string  `json:"studentNumber" validate:"required"`
		FullName      string  `json:"fullName" validate:"required"`
		Email         string  `json:"email" validate:"required,email"`
		GPA           float64 `json:"gpa"`
		PartnerID     *int64  `json:"partnerID"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	student := &domain.Student{
		StudentNumber: req.StudentNumber,
		FullName:      req.FullName,
		Email:         req.Email,
		GPA:           req.GPA,
		PartnerID:     req.PartnerID,
	}

	if err := utils.ValidateStudentGPA(student); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.CreateStudent(student); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "students_student_number_key":
				h.errorResponse(w, r, "学号已存在")
			case "students_partner_id_fkey":
				h.errorResponse(w, r, "同伴不存在")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "创建学生成功", student)
}

func (h *Handler) GetAllStudents(w http.ResponseWriter, r *http.Request) {
	students, err := h.repository.GetAllStudents()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取学生列表成功", students)
}

func (h *Handler) GetStudent(w http.ResponseWriter, r *http.Request) {
	student := r.Context().Value(StudentCtx).(*domain.Student)

	h.successResponse(w, r, "获取学生成功", student)
}

func (h *Handler) UpdateStudent(w http.ResponseWriter, r *http.Request) {
	student := r.Context().Value(StudentCtx).(*domain.Student)

	var req struct {
		StudentNumber *string  `json:"studentNumber"`
		FullName      *string  `json:"fullName"`
		Email         *string  `json:"email" validate:"omitempty,email"`
		GPA           *float64 `json:"gpa"`
		PartnerID     *int64   `json:"partnerID"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.StudentNumber != nil {
		student.StudentNumber = *req.StudentNumber
	}
	if req.FullName != nil {
		student.FullName = *req.FullName
	}
	if req.Email != nil {
		student.Email = *req.Email
	}
	if req.GPA != nil {
		student.GPA = *req.GPA
	}
	if req.PartnerID != nil {
		student.PartnerID = req.PartnerID
	}

	if err := utils.ValidateStudentGPA(student); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.UpdateStudent(student); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "students_student_number_key":
				h.errorResponse(w, r, "学号已存在")
			case "students_partner_id_fkey":
				h.errorResponse(w, r, "同伴不存在")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新学生成功", student)
}

func (h *Handler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	student := r.Context().Value(StudentCtx).(*domain.Student)

	if err := h.repository.DeleteStudent(student.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除学生成功", nil)
}

func (h *Handler) GetStudentPreferences(w http.ResponseWriter, r *http.Request) {
	student := r.Context().Value(StudentCtx).(*domain.Student)

	preferences, err := h.repository.GetPreferencesByStudentID(student.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取志愿成功", preferences)
}

func (h *Handler) ReplaceStudentPreferences(w http.ResponseWriter, r *http.Request) {
	student := r.Context().Value(StudentCtx).(*domain.Student)

	var req struct {
		Preferences []struct {
			ProjectID int64 `json:"projectID" validate:"required"`
			Rank      int32 `json:"rank" validate:"required,min=1,max=5"`
		} `json:"preferences" validate:"required,max=5,dive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	preferences := make([]*domain.Preference, 0, len(req.Preferences))
	for _, p := range req.Preferences {
		preferences = append(preferences, &domain.Preference{
			StudentID: student.ID,
			ProjectID: p.ProjectID,
			Rank:      p.Rank,
		})
	}

	// 排名和项目都不允许重复
	if err := utils.ValidatePreferences(preferences); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.ReplaceStudentPreferences(student.ID, preferences); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "preferences_project_id_fkey":
				h.errorResponse(w, r, "志愿中存在不存在的项目")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新志愿成功", preferences)
}
