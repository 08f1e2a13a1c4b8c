// Package seed fills a store with a default user and sample tasks for local
// development.
package seed

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/task-manager-api/internal/models"
	"github.com/adanyl0v/task-manager-api/internal/storage"
)

const (
	DefaultUserName     = "Test User"
	DefaultUserEmail    = "test@example.com"
	DefaultUserPassword = "password"
)

type Store interface {
	storage.UserRepository
	storage.TaskRepository
}

type Options struct {
	UserName     string
	UserEmail    string
	UserPassword string
	HashParams   *argon2id.Params
	Rand         *rand.Rand
	Now          time.Time
}

type Result struct {
	UserCreated bool
	Tasks       int
}

// plan is the number of tasks per status; overdue tasks are extra To Do
// tasks whose due date has passed.
var plan = []struct {
	status  string
	count   int
	overdue bool
}{
	{status: models.StatusToDo, count: 5},
	{status: models.StatusInProgress, count: 3},
	{status: models.StatusDone, count: 4},
	{status: models.StatusToDo, count: 2, overdue: true},
}

var (
	verbs   = []string{"Write", "Review", "Plan", "Fix", "Refactor", "Test", "Deploy", "Document", "Design", "Prepare"}
	objects = []string{"the release notes", "login page", "billing report", "API docs", "database backup", "sprint demo", "onboarding guide", "search filters", "error pages", "weekly summary"}
	details = []string{
		"Coordinate with the team before starting.",
		"Keep the scope small and ship early.",
		"Check the previous iteration for open comments.",
		"Ask for a review once the draft is ready.",
		"Update the tracker when done.",
	}
)

// GenerateTasks builds the sample tasks relative to now.
func GenerateTasks(r *rand.Rand, now time.Time) []*models.Task {
	var tasks []*models.Task
	for _, p := range plan {
		for i := 0; i < p.count; i++ {
			description := strings.Join([]string{
				details[r.IntN(len(details))],
				details[r.IntN(len(details))],
			}, " ")

			dueDate := now.Add(time.Duration(1+r.IntN(30*24)) * time.Hour)
			if p.overdue {
				dueDate = now.Add(-time.Duration(24+r.IntN(29*24)) * time.Hour)
			}
			dueDate = dueDate.Truncate(time.Minute)

			tasks = append(tasks, &models.Task{
				Name:        verbs[r.IntN(len(verbs))] + " " + objects[r.IntN(len(objects))],
				Description: &description,
				Status:      p.status,
				DueDate:     &dueDate,
			})
		}
	}
	return tasks
}

// Run creates the default user unless its email is taken, then inserts the
// sample tasks.
func Run(ctx context.Context, logger zerolog.Logger, store Store, opts Options) (*Result, error) {
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now().UTC()
	}
	if opts.HashParams == nil {
		opts.HashParams = argon2id.DefaultParams
	}
	opts.UserEmail = strings.ToLower(strings.TrimSpace(opts.UserEmail))

	res := new(Result)
	exists, err := store.EmailExists(ctx, opts.UserEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to check default user: %w", err)
	}
	if !exists {
		err = createUser(ctx, store, opts)
		if err != nil {
			return nil, err
		}
		res.UserCreated = true
		logger.Info().
			Str("email", opts.UserEmail).
			Msg("created default user")
	} else {
		logger.Info().
			Str("email", opts.UserEmail).
			Msg("default user already exists")
	}

	for _, task := range GenerateTasks(opts.Rand, opts.Now) {
		err = store.CreateTask(ctx, task)
		if err != nil {
			return nil, fmt.Errorf("failed to create task: %w", err)
		}
		res.Tasks++
	}

	logger.Info().
		Int("tasks", res.Tasks).
		Msg("seeded tasks")
	return res, nil
}

func createUser(ctx context.Context, store Store, opts Options) error {
	userUUID, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("failed to generate user uuid: %w", err)
	}

	passwordHash, err := argon2id.CreateHash(opts.UserPassword, opts.HashParams)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	err = store.CreateUser(ctx, &models.User{
		ID:       userUUID.String(),
		Name:     opts.UserName,
		Email:    opts.UserEmail,
		Password: passwordHash,
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to create default user: %w", err)
	}
	return nil
}
