package main

import (
	"context"
	"flag"

	"github.com/adanyl0v/task-manager-api/internal/app"
	"github.com/adanyl0v/task-manager-api/internal/seed"
)

func main() {
	name := flag.String("name", seed.DefaultUserName, "default user name")
	email := flag.String("email", seed.DefaultUserEmail, "default user email")
	password := flag.String("password", seed.DefaultUserPassword, "default user password")
	flag.Parse()

	logger := app.NewDefaultLogger()
	cfg := app.MustReadEnv(logger)
	logger = app.MustInitApplicationLogger(logger, cfg.Env)

	store := app.MustOpenStore(logger, cfg)
	defer app.CloseStore(logger, store)

	_, err := seed.Run(context.Background(), logger, store, seed.Options{
		UserName:     *name,
		UserEmail:    *email,
		UserPassword: *password,
	})
	if err != nil {
		logger.Error().
			Err(err).
			Msg("failed to seed store")
		panic(err)
	}
}
