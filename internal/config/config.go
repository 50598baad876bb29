package config

import (
	"errors"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Server      struct {
		Port            string `env:"PORT" envDefault:"3000"`
		ReadTimeout     int    `env:"READ_TIMEOUT" envDefault:"10"`
		WriteTimeout    int    `env:"WRITE_TIMEOUT" envDefault:"15"`
		IdleTimeout     int    `env:"IDLE_TIMEOUT" envDefault:"60"`
		ShutdownTimeout int    `env:"SHUTDOWN_TIMEOUT" envDefault:"10"`
	} `envPrefix:"SERVER_"`
	Database struct {
		DSN                string `env:"DSN,required"`
		ConnectTimeout     int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		QueryTimeout       int    `env:"QUERY_TIMEOUT" envDefault:"10"`
		TransactionTimeout int    `env:"TRANSACTION_TIMEOUT" envDefault:"20"`
		MaxOpenConns       int    `env:"MAX_OPEN_CONNS" envDefault:"10"`
		MaxIdleConns       int    `env:"MAX_IDLE_CONNS" envDefault:"10"`
		MaxIdleTime        int    `env:"MAX_IDLE_TIME" envDefault:"60"`
	} `envPrefix:"DATABASE_"`
	Admin struct {
		Username string `env:"USERNAME" envDefault:"admin"`
		Password string `env:"PASSWORD,required"`
	} `envPrefix:"ADMIN_"`
	JWT struct {
		Expiration int    `env:"EXPIRATION" envDefault:"1209600"` // 14 天
		Secret     string `env:"SECRET,required"`
	} `envPrefix:"JWT_"`
	Email struct {
		SMTP struct {
			Username    string `env:"USERNAME,required"`
			Password    string `env:"PASSWORD,required"`
			Host        string `env:"HOST,required"`
			Port        int    `env:"PORT" envDefault:"465"`
			DialTimeout int    `env:"DIAL_TIMEOUT" envDefault:"10"`
		} `envPrefix:"SMTP_"`
	} `envPrefix:"EMAIL_"`
	RabbitMQ struct {
		DSN            string `env:"DSN,required"`
		PublishTimeout int    `env:"PUBLISH_TIMEOUT" envDefault:"10"`
	} `envPrefix:"RABBITMQ_"`
	Redis struct {
		Host               string `env:"HOST" envDefault:"localhost"`
		Port               int    `env:"PORT" envDefault:"6379"`
		Password           string `env:"PASSWORD,required"`
		ConnectTimeout     int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		OperationTimeout   int    `env:"OPERATION_TIMEOUT" envDefault:"10"`
		ProgressExpiration int    `env:"PROGRESS_EXPIRATION" envDefault:"3600"` // 进度快照的过期时间（秒）
	} `envPrefix:"REDIS_"`
	// 遗传算法的默认参数，请求中未指定参数或预设时使用
	GA struct {
		PopulationSize         int32   `env:"POPULATION_SIZE" envDefault:"200"`
		MaxGenerations         int32   `env:"MAX_GENERATIONS" envDefault:"1000"`
		MutationRate           float64 `env:"MUTATION_RATE" envDefault:"0.02"`
		CrossoverRate          float64 `env:"CROSSOVER_RATE" envDefault:"0.8"`
		ElitePercentage        float64 `env:"ELITE_PERCENTAGE" envDefault:"0.05"`
		TournamentSize         int32   `env:"TOURNAMENT_SIZE" envDefault:"3"`
		ConvergenceEnabled     bool    `env:"CONVERGENCE_ENABLED" envDefault:"true"`
		ConvergenceGenerations int32   `env:"CONVERGENCE_GENERATIONS" envDefault:"50"`
		ConvergenceThreshold   float64 `env:"CONVERGENCE_THRESHOLD" envDefault:"0.001"`
		RepairEnabled          bool    `env:"REPAIR_ENABLED" envDefault:"true"`
		CapacityPenaltyWeight  float64 `env:"CAPACITY_PENALTY_WEIGHT" envDefault:"50"`
		GPAPenaltyWeight       float64 `env:"GPA_PENALTY_WEIGHT" envDefault:"30"`
		PartnerPenaltyWeight   float64 `env:"PARTNER_PENALTY_WEIGHT" envDefault:"40"`
	} `envPrefix:"GA_"`
	Seed struct {
		StudentCount int `env:"STUDENT_COUNT" envDefault:"30"`
		ProjectCount int `env:"PROJECT_COUNT" envDefault:"6"`
	} `envPrefix:"SEED_"`
	EmailDomain string `env:"EMAIL_DOMAIN" envDefault:"mail2.sysu.edu.cn"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if ok := errors.As(err, &aggErr); ok {
			// 只返回第一个错误使得日志更清晰
			return nil, aggErr.Errors[0]
		}
	}

	return cfg, nil
}
