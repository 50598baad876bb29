package handler

import (
	"context"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/opti-match/backend/internal/config"
	"github.com/sysu-ecnc-dev/opti-match/backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
	translator  ut.Translator
	mailChannel *amqp.Channel
	redisClient *redis.Client

	adminPasswordHash []byte

	// 正在执行的算法运行，token -> 取消函数
	activeRunsMu sync.Mutex
	activeRuns   map[string]context.CancelFunc

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, mailCh *amqp.Channel, rdb *redis.Client) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	// 管理员密码只在配置中，启动时生成哈希供登录比对
	adminPasswordHash, err := bcrypt.GenerateFromPassword([]byte(cfg.Admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		translator:  trans,
		mailChannel: mailCh,
		redisClient: rdb,

		adminPasswordHash: adminPasswordHash,
		activeRuns:        make(map[string]context.CancelFunc),

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Route("/students", func(r chi.Router) {
			r.Post("/", h.CreateStudent)
			r.Get("/", h.GetAllStudents)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.studentInfo)
				r.Get("/", h.GetStudent)
				r.Patch("/", h.UpdateStudent)
				r.Delete("/", h.DeleteStudent)
				r.Route("/preferences", func(r chi.Router) {
					r.Get("/", h.GetStudentPreferences)
					r.Put("/", h.ReplaceStudentPreferences)
				})
			})
		})

		r.Route("/projects", func(r chi.Router) {
			r.Post("/", h.CreateProject)
			r.Get("/", h.GetAllProjects)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.projectInfo)
				r.Get("/", h.GetProject)
				r.Patch("/", h.UpdateProject)
				r.Delete("/", h.DeleteProject)
			})
		})

		r.Route("/runs", func(r chi.Router) {
			r.Post("/", h.LaunchRun)
			r.Get("/", h.GetAllRuns)
			r.Get("/latest", h.GetLatestRun)
			r.Get("/progress/{token}", h.GetRunProgress)
			r.Post("/cancel/{token}", h.CancelRun)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.runInfo)
				r.Get("/", h.GetRun)
				r.Delete("/", h.DeleteRun)
				r.Get("/assignments", h.GetRunAssignments)
				r.Get("/stats", h.GetRunStats)
			})
		})
	})
}
