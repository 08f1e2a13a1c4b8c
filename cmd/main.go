package main

import "github.com/adanyl0v/task-manager-api/internal/app"

func main() {
	logger := app.NewDefaultLogger()
	cfg := app.MustReadEnv(logger)
	logger = app.MustInitApplicationLogger(logger, cfg.Env)

	store := app.MustOpenStore(logger, cfg)
	defer app.CloseStore(logger, store)

	router := app.NewRouter(logger, cfg, store, nil)
	app.MustListenAndServeHTTP(logger, cfg, router)
}
