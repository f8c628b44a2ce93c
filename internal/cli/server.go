package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quiz-attempt-service/internal/app"
	"quiz-attempt-service/internal/auth"
	"quiz-attempt-service/internal/config"
	"quiz-attempt-service/internal/domain"
	"quiz-attempt-service/internal/infra/memory"
	pgstore "quiz-attempt-service/internal/infra/postgres"
	redisstore "quiz-attempt-service/internal/infra/redis"
	"quiz-attempt-service/internal/ratelimit"
	"quiz-attempt-service/internal/session"
	transport "quiz-attempt-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz attempt server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var loader memory.QuizLoader = memory.NewStaticQuizLoader(sampleQuizzes())
	if pool != nil {
		loader = pgstore.NewQuizLoader(pool)
	}

	quizTTL := config.Duration(cfg.Quiz.TTL, 10*time.Minute)
	var quizRepo app.QuizRepository
	if redisClient != nil {
		quizRepo = redisstore.NewQuizRepository(redisClient, loader, quizTTL)
	} else {
		quizRepo = memory.NewQuizRepository(loader, quizTTL)
	}

	var users app.UserStore = memory.NewUserStore()
	var results app.ResultStore = memory.NewResultStore()
	if pool != nil {
		users = pgstore.NewUserStore(pool)
		results = pgstore.NewResultStore(pool)
	}

	sweepCtx, stopSweeps := context.WithCancel(ctx)
	defer stopSweeps()

	tracker := session.New()
	tracker.StartJanitor(sweepCtx, config.Duration(cfg.Session.Sweep, 5*time.Minute))

	limiter := ratelimit.New(cfg.RateLimit.MaxRequests, config.Duration(cfg.RateLimit.Window, ratelimit.DefaultWindow))
	limiter.StartJanitor(sweepCtx, config.Duration(cfg.RateLimit.Sweep, 5*time.Minute))

	tokens := auth.NewTokenService(cfg.Auth.Secret, config.Duration(cfg.Auth.TokenTTL, 8*time.Hour))
	service := app.NewAttemptService(quizRepo, tracker, users, results)
	handler := transport.NewHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	api := http.NewServeMux()
	handler.Register(api)
	mux.Handle("/api/", ratelimit.Middleware(limiter, nil)(auth.Middleware(tokens)(api)))

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz attempt service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleQuizzes provides a minimal data set for running without Postgres.
func sampleQuizzes() map[string]domain.Quiz {
	return map[string]domain.Quiz{
		"quiz-1": {
			ID:         "quiz-1",
			Name:       "Warm-up",
			Difficulty: domain.DifficultyEasy,
			TimeLimit:  5,
			Questions: []domain.Question{
				{ID: "q1", Content: domain.MultipleChoice{
					Prompt:        "What is 2 + 2?",
					Options:       []string{"3", "4", "5"},
					CorrectOption: 1,
				}},
				{ID: "q2", Content: domain.FillInTheBlank{
					Prompt:        "The capital of France is ____.",
					CorrectAnswer: "Paris",
				}},
				{ID: "q3", Content: domain.MultipleSelect{
					Prompt:         "Which of these are prime?",
					Options:        []string{"2", "4", "5", "9"},
					CorrectOptions: []int{0, 2},
				}},
			},
		},
	}
}
