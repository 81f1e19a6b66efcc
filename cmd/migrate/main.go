package main

import (
	"os"
	"strconv"

	"moviehub/pkg/config"
	"moviehub/pkg/logger"
	"moviehub/postgres"

	_ "github.com/lib/pq"
	migrate "github.com/rubenv/sql-migrate"
	"github.com/spf13/cobra"
)

func main() {
	var (
		dir  string
		down bool
	)
	cmd := &cobra.Command{
		Use:          "migrate",
		Short:        "Apply the kv_entries migrations to postgres",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(dir, down)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "migrations", "directory holding the sql migrations")
	cmd.Flags().BoolVar(&down, "down", false, "roll back the most recent migration")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(dir string, down bool) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.New(logger.Options{}).Errorw("cannot load config", "error", err)
		return err
	}
	log := logger.New(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	defer func() { _ = log.Sync() }()

	db, err := postgres.NewConnection(postgres.Options{
		DBName:   cfg.DB.Name,
		DBUser:   cfg.DB.User,
		Password: cfg.DB.Pass,
		Host:     cfg.DB.Host,
		Port:     strconv.Itoa(cfg.DB.Port),
		SSLMode:  cfg.DB.EnableSSL,
	})
	if err != nil {
		log.Errorw("cannot connect to db", "error", err)
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Errorw("cannot get db instance", "error", err)
		return err
	}
	defer sqlDB.Close()

	migrations := &migrate.FileMigrationSource{Dir: dir}

	direction, limit := migrate.Up, 0
	if down {
		direction, limit = migrate.Down, 1
	}
	total, err := migrate.ExecMax(sqlDB, "postgres", migrations, direction, limit)
	if err != nil {
		log.Errorw("cannot execute migration", "error", err)
		return err
	}

	log.Infow("applied migrations", "total", total, "down", down)
	return nil
}
