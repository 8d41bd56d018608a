package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/oksasatya/taskmaster-api/config"
	"github.com/oksasatya/taskmaster-api/internal/domain/entity"
	"github.com/oksasatya/taskmaster-api/internal/domain/repository"
	pginfra "github.com/oksasatya/taskmaster-api/internal/infrastructure/postgres"
	"github.com/oksasatya/taskmaster-api/pkg/helpers"
)

type seedTask struct {
	title    string
	priority entity.TaskPriority
	status   entity.TaskStatus
	dueIn    time.Duration
}

var demoTasks = []seedTask{
	{"Review quarterly report", entity.PriorityHigh, entity.TaskPending, 72 * time.Hour},
	{"Book dentist appointment", entity.PriorityLow, entity.TaskPending, 0},
	{"Prepare sprint demo", entity.PriorityCritical, entity.TaskPending, 24 * time.Hour},
	{"Renew gym membership", entity.PriorityMedium, entity.TaskCompleted, 0},
	{"Clean up inbox", entity.PriorityLow, entity.TaskCompleted, 0},
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	users := pginfra.NewUserRepository(pool)
	tasks := pginfra.NewTaskRepository(pool)

	email := "demo@taskmaster.local"
	password := "password123"

	u, err := users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		hash, err := helpers.HashPassword(password, cfg.BcryptCost)
		if err != nil {
			log.Fatalf("failed to hash password: %v", err)
		}
		u = &entity.User{ID: entity.NewID(), Name: "Demo User", Email: email, Password: hash}
		if err := users.Create(ctx, u); err != nil {
			log.Fatalf("failed to seed user: %v", err)
		}
	case err != nil:
		log.Fatalf("failed to look up user: %v", err)
	}
	fmt.Printf("seeded user: id=%s email=%s password=%s\n", u.ID, email, password)

	n, err := tasks.Count(ctx, repository.TaskFilter{Owner: u.ID})
	if err != nil {
		log.Fatalf("failed to count tasks: %v", err)
	}
	if n > 0 {
		fmt.Printf("user already has %d tasks; skipping\n", n)
		return
	}
	for _, st := range demoTasks {
		t := &entity.Task{ID: entity.NewID(), Title: st.title, Priority: st.priority, Status: st.status, Owner: u.ID}
		if st.dueIn > 0 {
			due := time.Now().UTC().Add(st.dueIn).Truncate(24 * time.Hour)
			t.DueDate = &due
		}
		if err := t.Validate(); err != nil {
			log.Fatalf("invalid seed task %q: %v", st.title, err)
		}
		if err := tasks.Create(ctx, t); err != nil {
			log.Fatalf("failed to seed task %q: %v", st.title, err)
		}
	}
	fmt.Printf("seeded %d tasks\n", len(demoTasks))
}
