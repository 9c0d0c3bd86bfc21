package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"taskapi/internal/auth"
	"taskapi/internal/config"
	"taskapi/internal/db"
	apperrors "taskapi/internal/errors"
	"taskapi/internal/logging"
	"taskapi/internal/notify"
	"taskapi/internal/repository"
	"taskapi/internal/service"
)

//go:embed fixture.json
var defaultFixture []byte

// SeedUser is one account in the fixture, with the tasks it owns.
type SeedUser struct {
	Name     string     `json:"name"`
	Email    string     `json:"email"`
	Password string     `json:"password"`
	Age      int        `json:"age"`
	Tasks    []SeedTask `json:"tasks"`
}

// SeedTask is one task in the fixture.
type SeedTask struct {
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

// Result counts what a seed run did.
type Result struct {
	UsersCreated int
	UsersSkipped int
	TasksCreated int
}

func main() {
	cfg := config.Load()
	logger := logging.WithComponent(
		logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}),
		"seed",
	)
	logger.Info("starting seed script")

	fixture := defaultFixture
	if len(os.Args) > 1 {
		data, err := os.ReadFile(os.Args[1])
		if err != nil {
			logger.Error("read fixture", "path", os.Args[1], "error", err)
			os.Exit(1)
		}
		fixture = data
	}
	users, err := parseFixture(fixture)
	if err != nil {
		logger.Error("parse fixture", "error", err)
		os.Exit(1)
	}

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		logger.Error("connect database", "error", err)
		os.Exit(1)
	}
	if err := db.Migrate(gormDB); err != nil {
		logger.Error("migrate database", "error", err)
		os.Exit(1)
	}
	logger.Info("database ready", "driver", cfg.DBDriver)

	store := repository.NewStore(gormDB)
	// seeded accounts get no welcome mail
	authService := service.NewAuthService(store, auth.NewJWTService(cfg.JWTSecret), notify.NewLogSender(logger), nil)
	taskService := service.NewTaskService(store.Tasks())

	res, err := seed(context.Background(), authService, taskService, users, logger)
	if err != nil {
		logger.Error("seed failed", "error", err)
		os.Exit(1)
	}
	logger.Info("seed completed",
		"users_created", res.UsersCreated,
		"users_skipped", res.UsersSkipped,
		"tasks_created", res.TasksCreated,
	)
}

func parseFixture(data []byte) ([]SeedUser, error) {
	var users []SeedUser
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	return users, nil
}

// seed registers every fixture user through the services and creates its
// tasks. Users whose email already exists are left alone, so the script can
// be rerun.
func seed(ctx context.Context, authService service.AuthService, taskService service.TaskService, users []SeedUser, logger *slog.Logger) (Result, error) {
	var res Result
	for _, su := range users {
		user, _, err := authService.Register(ctx, service.RegisterInput{
			Name:     su.Name,
			Email:    su.Email,
			Password: su.Password,
			Age:      su.Age,
		})
		if errors.Is(err, apperrors.ErrConflict) {
			logger.Info("user exists, skipping", "email", su.Email)
			res.UsersSkipped++
			continue
		}
		if err != nil {
			return res, fmt.Errorf("register %s: %w", su.Email, err)
		}
		res.UsersCreated++

		for _, st := range su.Tasks {
			if _, err := taskService.Create(ctx, user.ID, service.CreateTaskInput{
				Description: st.Description,
				Completed:   st.Completed,
			}); err != nil {
				return res, fmt.Errorf("create task for %s: %w", su.Email, err)
			}
			res.TasksCreated++
		}
	}
	return res, nil
}
