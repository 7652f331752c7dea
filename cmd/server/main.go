package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/small-engineer/go-todo-serv/internal/adapter/httpadapter"
	"github.com/small-engineer/go-todo-serv/internal/config"
	"github.com/small-engineer/go-todo-serv/internal/domain"
	"github.com/small-engineer/go-todo-serv/internal/infra/cache"
	infra "github.com/small-engineer/go-todo-serv/internal/infra/db"
	"github.com/small-engineer/go-todo-serv/internal/infra/mail"
	"github.com/small-engineer/go-todo-serv/internal/infra/mem"
	"github.com/small-engineer/go-todo-serv/internal/store"
	"github.com/small-engineer/go-todo-serv/internal/usecase/auth"
	"github.com/small-engineer/go-todo-serv/internal/usecase/todo"
)

const (
	migrateTimeout  = 30 * time.Second
	shutdownTimeout = 15 * time.Second
)

func newLogger(level string) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)
	lv, err := logrus.ParseLevel(level)
	if err != nil {
		log.WithError(err).Warn("bad LOG_LEVEL, using info")
		lv = logrus.InfoLevel
	}
	log.SetLevel(lv)
	return log
}

func main() {
	config.LoadDevEnv(config.DevEnvFile)

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatal(err)
	}
	log := newLogger(cfg.LogLevel)

	users, todos, closeDB, err := openStores(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}
	defer closeDB()
	log.WithField("driver", cfg.DBDriver).Info("database ready")

	tokens, err := auth.NewTokens([]byte(cfg.JWTSecret))
	if err != nil {
		log.Fatal(err)
	}

	opts := []auth.Option{auth.WithLogger(log)}
	if cfg.RedisURL != "" {
		rdb, err := cache.NewClient(context.Background(), cfg.RedisURL)
		if err != nil {
			log.Fatal(err)
		}
		defer rdb.Close()
		opts = append(opts, auth.WithCache(cache.NewUserCache(rdb, cache.DefaultTTL)))
		log.Info("redis user cache enabled")
	} else {
		opts = append(opts, auth.WithCache(mem.NewUserCache()))
	}
	if cfg.Mail.Enabled() {
		opts = append(opts, auth.WithNotifier(mail.NewMailer(cfg.Mail)))
		log.Info("welcome mail enabled")
	}

	as := auth.NewService(users, tokens, opts...)
	ts := todo.NewService(todos)
	s := httpadapter.NewServer(as, ts, log, httpadapter.WithStatusMapping(cfg.StatusMapping))

	startServer(log, ":"+cfg.Port, s.Routes())
}

// openStores returns the user and todo collections for driver, migrating SQL
// backends before use.
func openStores(driver, dsn string) (store.Collection[domain.User], store.Collection[domain.Todo], func(), error) {
	if driver == config.DriverMemory {
		return mem.NewCollection(store.Users), mem.NewCollection(store.Todos), func() {}, nil
	}

	db, err := infra.Open(driver, dsn)
	if err != nil {
		return nil, nil, nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), migrateTimeout)
	defer cancel()
	if err := infra.Migrate(ctx, db, driver); err != nil {
		db.Close()
		return nil, nil, nil, err
	}
	return infra.NewCollection(db, store.Users), infra.NewCollection(db, store.Todos), func() { db.Close() }, nil
}

func startServer(log *logrus.Logger, addr string, h http.Handler) {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Infof("start server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-sig
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
