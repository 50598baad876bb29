package handler

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/opti-match/backend/internal/domain"
	"github.com/sysu-ecnc-dev/opti-match/backend/internal/utils"
)

func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code        string  `json:"code" validate:"required"`
		Name        string  `json:"name" validate:"required"`
		Description string  `json:"description"`
		MinCapacity int32   `json:"minCapacity" validate:"required,min=1"`
		MaxCapacity int32   `json:"maxCapacity" validate:"required,min=1"`
		RequiredGPA float64 `json:"requiredGPA"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	project := &domain.Project{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		MinCapacity: req.MinCapacity,
		MaxCapacity: req.MaxCapacity,
		RequiredGPA: req.RequiredGPA,
	}

	if err := utils.ValidateProjectCapacity(project); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.CreateProject(project); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "projects_code_key":
				h.errorResponse(w, r, "项目代码已存在")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "创建项目成功", project)
}

func (h *Handler) GetAllProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.repository.GetAllProjects()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取项目列表成功", projects)
}

func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	project := r.Context().Value(ProjectCtx).(*domain.Project)

	h.successResponse(w, r, "获取项目成功", project)
}

func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	project := r.Context().Value(ProjectCtx).(*domain.Project)

	var req struct {
		Code        *string  `json:"code"`
		Name        *string  `json:"name"`
		Description *string  `json:"description"`
		MinCapacity *int32   `json:"minCapacity"`
		MaxCapacity *int32   `json:"maxCapacity"`
		RequiredGPA *float64 `json:"requiredGPA"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.Code != nil {
		project.Code = *req.Code
	}
	if req.Name != nil {
		project.Name = *req.Name
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.MinCapacity != nil {
		project.MinCapacity = *req.MinCapacity
	}
	if req.MaxCapacity != nil {
		project.MaxCapacity = *req.MaxCapacity
	}
	if req.RequiredGPA != nil {
		project.RequiredGPA = *req.RequiredGPA
	}

	if err := utils.ValidateProjectCapacity(project); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.UpdateProject(project); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "projects_code_key":
				h.errorResponse(w, r, "项目代码已存在")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新项目成功", project)
}

func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	project := r.Context().Value(ProjectCtx).(*domain.Project)

	if err := h.repository.DeleteProject(project.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除项目成功", nil)
}
