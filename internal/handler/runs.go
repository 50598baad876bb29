package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/opti-match/backend/internal/domain"
	"github.com/sysu-ecnc-dev/opti-match/backend/internal/genetic"
	"github.com/sysu-ecnc-dev/opti-match/backend/internal/utils"
)

// RunProgress 运行过程中写入 redis 的进度快照
type RunProgress struct {
	Status          string   `json:"status"` // running / completed / cancelled / failed
	Generation      int32    `json:"generation"`
	BestFitness     float64  `json:"bestFitness"`
	AverageFitness  float64  `json:"averageFitness"`
	ValidCount      int32    `json:"validCount"`
	BestEverFitness float64  `json:"bestEverFitness"`
	RunID           *int64   `json:"runID,omitempty"`
	Advisories      []string `json:"advisories,omitempty"`
	Error           string   `json:"error,omitempty"`
}

// defaultParameters 用配置中的默认值构造算法参数
func (h *Handler) defaultParameters() *genetic.Parameters {
	params := genetic.DefaultParameters()
	params.PopulationSize = h.config.GA.PopulationSize
	params.MaxGenerations = h.config.GA.MaxGenerations
	params.MutationRate = h.config.GA.MutationRate
	params.CrossoverRate = h.config.GA.CrossoverRate
	params.ElitePercentage = h.config.GA.ElitePercentage
	params.TournamentSize = h.config.GA.TournamentSize
	params.ConvergenceEnabled = h.config.GA.ConvergenceEnabled
	params.ConvergenceGenerations = h.config.GA.ConvergenceGenerations
	params.ConvergenceThreshold = h.config.GA.ConvergenceThreshold
	params.RepairEnabled = h.config.GA.RepairEnabled
	params.CapacityPenaltyWeight = h.config.GA.CapacityPenaltyWeight
	params.GPAPenaltyWeight = h.config.GA.GPAPenaltyWeight
	params.PartnerPenaltyWeight = h.config.GA.PartnerPenaltyWeight
	return params
}

func (h *Handler) LaunchRun(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Preset     *string             `json:"preset"`
		Parameters *genetic.Parameters `json:"parameters"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 优先使用预设，其次使用显式参数，都没有时使用默认参数
	var params *genetic.Parameters
	switch {
	case req.Preset != nil:
		preset, ok := genetic.PresetByName(*req.Preset)
		if !ok {
			h.errorResponse(w, r, fmt.Sprintf("未知的预设 %s", *req.Preset))
			return
		}
		params = preset
	case req.Parameters != nil:
		params = req.Parameters
	default:
		params = h.defaultParameters()
	}

	if err := params.Validate(); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 加载只读数据快照
	students, err := h.repository.GetAllStudents()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	projects, err := h.repository.GetAllProjects()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	preferences, err := h.repository.GetAllPreferences()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := utils.ValidatePreferences(preferences); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}
	for _, studentID := range utils.FindAsymmetricPartnerships(students) {
		slog.Warn("同伴关系不对称", "studentID", studentID)
	}

	engine, err := genetic.NewEngine(params, students, projects, preferences)
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	token := fmt.Sprintf("%x", time.Now().UnixNano())

	runCtx, cancel := context.WithCancel(context.Background())
	h.activeRunsMu.Lock()
	h.activeRuns[token] = cancel
	h.activeRunsMu.Unlock()

	engine.OnGeneration(func(stats genetic.GenerationStats) {
		h.writeProgress(token, &RunProgress{
			Status:          "running",
			Generation:      stats.Generation,
			BestFitness:     stats.BestFitness,
			AverageFitness:  stats.AverageFitness,
			ValidCount:      stats.ValidCount,
			BestEverFitness: stats.BestEverFitness,
		})
	})

	go h.executeRun(runCtx, token, params, engine, students, projects)

	h.successResponse(w, r, "算法已开始执行", map[string]string{"token": token})
}

// executeRun 在后台执行算法，结束后持久化结果并发送通知邮件
func (h *Handler) executeRun(ctx context.Context, token string, params *genetic.Parameters, engine *genetic.Engine, students []*domain.Student, projects []*domain.Project) {
	defer func() {
		h.activeRunsMu.Lock()
		delete(h.activeRuns, token)
		h.activeRunsMu.Unlock()
	}()

	result, err := engine.Run(ctx)
	if err != nil {
		slog.Error("算法执行失败", "token", token, "error", err)
		h.writeProgress(token, &RunProgress{Status: "failed", Error: err.Error()})
		return
	}

	run := &domain.AlgorithmRun{
		RunTimestamp:    time.Now(),
		PopulationSize:  params.PopulationSize,
		Generations:     result.Generations,
		MutationRate:    params.MutationRate,
		CrossoverRate:   params.CrossoverRate,
		BestFitness:     result.BestFitness,
		ExecutionTimeMs: result.ExecutionTimeMs,
	}

	assignments := make([]*domain.Assignment, 0, len(result.Assignments))
	for _, a := range result.Assignments {
		assignments = append(assignments, &domain.Assignment{
			StudentID:      a.StudentID,
			ProjectID:      a.ProjectID,
			PreferenceRank: a.PreferenceRank,
		})
	}

	stats := make([]*domain.GenerationStats, 0, len(result.Stats))
	for _, s := range result.Stats {
		stats = append(stats, &domain.GenerationStats{
			Generation:        s.Generation,
			BestFitness:       s.BestFitness,
			AverageFitness:    s.AverageFitness,
			WorstFitness:      s.WorstFitness,
			StandardDeviation: s.StandardDeviation,
			ValidCount:        s.ValidCount,
			BestEverFitness:   s.BestEverFitness,
		})
	}

	if err := h.repository.InsertCompletedRun(run, assignments, stats); err != nil {
		slog.Error("无法持久化运行结果", "token", token, "error", err)
		h.writeProgress(token, &RunProgress{Status: "failed", Error: err.Error()})
		return
	}

	status := "completed"
	if result.Cancelled {
		status = "cancelled"
	}

	lastGeneration := int32(0)
	if len(result.Stats) > 0 {
		lastGeneration = result.Stats[len(result.Stats)-1].Generation
	}
	h.writeProgress(token, &RunProgress{
		Status:          status,
		Generation:      lastGeneration,
		BestFitness:     result.BestFitness,
		BestEverFitness: result.BestFitness,
		RunID:           &run.ID,
		Advisories:      result.Advisories,
	})

	if !result.Valid {
		slog.Warn("最终分配仍存在约束违反", "runID", run.ID, "violations", result.Violations.Total())
	}
	for _, advisory := range result.Advisories {
		slog.Warn("运行提示", "runID", run.ID, "advisory", advisory)
	}

	h.publishResultMails(run.ID, assignments, students, projects)

	slog.Info("算法执行完成", "runID", run.ID, "bestFitness", run.BestFitness, "generations", run.Generations, "executionTimeMs", run.ExecutionTimeMs)
}

// publishResultMails 为每个学生投递一封分配结果邮件到消息队列
func (h *Handler) publishResultMails(runID int64, assignments []*domain.Assignment, students []*domain.Student, projects []*domain.Project) {
	studentByID := make(map[int64]*domain.Student)
	for _, student := range students {
		studentByID[student.ID] = student
	}
	projectByID := make(map[int64]*domain.Project)
	for _, project := range projects {
		projectByID[project.ID] = project
	}

	for _, assignment := range assignments {
		student := studentByID[assignment.StudentID]
		project := projectByID[assignment.ProjectID]
		if student == nil || project == nil {
			continue
		}

		mailMessage := domain.MailMessage{
			Type: "assignment_result",
			To:   student.Email,
			Data: domain.AssignmentResultMailData{
				FullName:    student.FullName,
				ProjectCode: project.Code,
				ProjectName: project.Name,
				Rank:        assignment.PreferenceRank,
			},
		}

		body, err := json.Marshal(mailMessage)
		if err != nil {
			slog.Error("无法序列化邮件信息", "runID", runID, "studentID", student.ID, "error", err)
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
		err = h.mailChannel.PublishWithContext(
			ctx,
			"",
			"email_queue",
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				Body:         body,
				DeliveryMode: amqp.Persistent,
			},
		)
		cancel()
		if err != nil {
			slog.Error("无法投递邮件信息", "runID", runID, "studentID", student.ID, "error", err)
		}
	}
}

func (h *Handler) writeProgress(token string, progress *RunProgress) {
	body, err := json.Marshal(progress)
	if err != nil {
		slog.Error("无法序列化进度快照", "token", token, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.Redis.OperationTimeout)*time.Second)
	defer cancel()

	expiration := time.Duration(h.config.Redis.ProgressExpiration) * time.Second
	if err := h.redisClient.Set(ctx, "run_progress:"+token, body, expiration).Err(); err != nil {
		slog.Error("无法写入进度快照", "token", token, "error", err)
	}
}

func (h *Handler) GetRunProgress(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(h.config.Redis.OperationTimeout)*time.Second)
	defer cancel()

	body, err := h.redisClient.Get(ctx, "run_progress:"+token).Bytes()
	if err != nil {
		switch {
		case errors.Is(err, redis.Nil):
			h.errorResponse(w, r, "进度不存在或已过期")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	progress := &RunProgress{}
	if err := json.Unmarshal(body, progress); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取进度成功", progress)
}

func (h *Handler) CancelRun(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	h.activeRunsMu.Lock()
	cancel, exists := h.activeRuns[token]
	h.activeRunsMu.Unlock()

	if !exists {
		h.errorResponse(w, r, "没有正在执行的运行")
		return
	}

	// 取消在代与代的边界生效，已完成的部分会被正常持久化
	cancel()
	h.successResponse(w, r, "已请求取消", nil)
}

func (h *Handler) GetAllRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.repository.GetAllAlgorithmRuns()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取运行列表成功", runs)
}

func (h *Handler) GetLatestRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.repository.GetLatestAlgorithmRun()
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.successResponse(w, r, "还没有任何运行记录", nil)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "获取最新运行成功", run)
}

func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	run := r.Context().Value(RunCtx).(*domain.AlgorithmRun)

	h.successResponse(w, r, "获取运行成功", run)
}

func (h *Handler) DeleteRun(w http.ResponseWriter, r *http.Request) {
	run := r.Context().Value(RunCtx).(*domain.AlgorithmRun)

	if err := h.repository.DeleteAlgorithmRun(run.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除运行成功", nil)
}

func (h *Handler) GetRunAssignments(w http.ResponseWriter, r *http.Request) {
	run := r.Context().Value(RunCtx).(*domain.AlgorithmRun)

	assignments, err := h.repository.GetAssignmentsByRunID(run.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取分配结果成功", assignments)
}

func (h *Handler) GetRunStats(w http.ResponseWriter, r *http.Request) {
	run := r.Context().Value(RunCtx).(*domain.AlgorithmRun)

	stats, err := h.repository.GetGenerationStatsByRunID(run.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取统计数据成功", stats)
}
