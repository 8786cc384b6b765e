// Command admin is the operator tool: it creates ADMIN accounts and runs the
// schema migration against the configured database.
//
//	admin create -email ops@example.com -password 'S3cret-pass'
//	admin migrate
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"job-portal/internal/core/auth"
	"job-portal/internal/core/config"
	"job-portal/internal/core/database"
	"job-portal/internal/core/logger"
	"job-portal/internal/domain"
	"job-portal/internal/repo"
	"job-portal/internal/service"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: admin [-config path] create -email E -password P | migrate")
	os.Exit(2)
}

func main() {
	_ = godotenv.Load()
	cfgPath := flag.String("config", os.Getenv("CONFIG_PATH"), "config file")
	flag.Parse()
	if flag.NArg() == 0 {
		usage()
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log, cleanup := logger.New(cfg.Log)
	defer cleanup()

	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       2,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	}, log)
	if err != nil {
		log.Fatal("db open", zap.Error(err))
	}
	defer func() { _ = database.Close(db) }()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	switch cmd, args := flag.Arg(0), flag.Args()[1:]; cmd {
	case "migrate":
		if err := database.Migrate(db); err != nil {
			log.Fatal("migrate failed", zap.Error(err))
		}
		log.Info("migrate done")

	case "create":
		fs := flag.NewFlagSet("create", flag.ExitOnError)
		email := fs.String("email", "", "admin email")
		password := fs.String("password", "", "admin password")
		_ = fs.Parse(args)
		if *email == "" || *password == "" {
			usage()
		}
		if err := database.Migrate(db); err != nil {
			log.Fatal("migrate failed", zap.Error(err))
		}
		svc := service.NewAuthService(repo.NewUserRepo(db), auth.Hasher{Cost: cfg.Security.BcryptCost}, log)
		u, err := svc.CreateAdmin(ctx, *email, *password)
		if err != nil {
			if msgs := domain.Messages(err); len(msgs) > 0 {
				fmt.Fprintln(os.Stderr, strings.Join(msgs, "\n"))
				os.Exit(1)
			}
			log.Fatal("create admin failed", zap.Error(err))
		}
		fmt.Printf("admin %d created: %s\n", u.ID, u.Email)

	default:
		usage()
	}
}
