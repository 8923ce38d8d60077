package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"jobportal/internal/config"
	"jobportal/internal/database"
)

type dbFlags struct {
	host     string
	port     int
	name     string
	user     string
	password string
	sslmode  string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var flags dbFlags
	open := func() (*gorm.DB, error) {
		cfg, err := loadDatabaseConfig(flags)
		if err != nil {
			return nil, fmt.Errorf("load database config: %w", err)
		}
		db, err := database.InitDatabase(cfg)
		if err != nil {
			return nil, fmt.Errorf("init database: %w", err)
		}
		return db, nil
	}

	root := &cobra.Command{
		Use:           "jobportal-admin",
		Short:         "Operator tooling for the job portal database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.host, "db-host", "", "数据库 Host（可选，默认读 DATABASE_HOST）")
	pf.IntVar(&flags.port, "db-port", 0, "数据库 Port（可选，默认读 DATABASE_PORT）")
	pf.StringVar(&flags.name, "db-name", "", "数据库名（可选，默认读 POSTGRES_DB）")
	pf.StringVar(&flags.user, "db-user", "", "数据库用户（可选，默认读 POSTGRES_USER）")
	pf.StringVar(&flags.password, "db-password", "", "数据库密码（可选，默认读 POSTGRES_PASSWORD）")
	pf.StringVar(&flags.sslmode, "db-sslmode", "", "数据库 SSLMODE（可选，默认读 DATABASE_SSLMODE）")

	root.AddCommand(
		newMigrateCmd(open),
		newCreateUserCmd(open),
		newStatsCmd(open),
	)
	return root
}

type openFunc func() (*gorm.DB, error)

func newMigrateCmd(open openFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update all tables and indexes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := open()
			if err != nil {
				return err
			}
			if err := database.Migrate(db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migration complete")
			return nil
		},
	}
}

// loadDatabaseConfig 优先使用命令行参数，其次读取环境变量，最后落到本地默认值。
func loadDatabaseConfig(f dbFlags) (config.DatabaseConfig, error) {
	host := firstNonEmpty(f.host, os.Getenv("DATABASE_HOST"), "localhost")
	name := firstNonEmpty(f.name, os.Getenv("POSTGRES_DB"), os.Getenv("DB_NAME"))
	user := firstNonEmpty(f.user, os.Getenv("POSTGRES_USER"), os.Getenv("DB_USER"))
	password := firstNonEmpty(f.password, os.Getenv("POSTGRES_PASSWORD"), os.Getenv("DB_PASSWORD"))
	sslmode := firstNonEmpty(f.sslmode, os.Getenv("DATABASE_SSLMODE"), "disable")

	port := f.port
	if port <= 0 {
		if env := strings.TrimSpace(os.Getenv("DATABASE_PORT")); env != "" {
			p, err := strconv.Atoi(env)
			if err != nil {
				return config.DatabaseConfig{}, fmt.Errorf("parse DATABASE_PORT: %w", err)
			}
			port = p
		}
	}
	if port <= 0 {
		port = 5432
	}

	if name == "" {
		return config.DatabaseConfig{}, errors.New("database name is required (POSTGRES_DB)")
	}
	if user == "" {
		return config.DatabaseConfig{}, errors.New("database user is required (POSTGRES_USER)")
	}
	if password == "" {
		return config.DatabaseConfig{}, errors.New("database password is required (POSTGRES_PASSWORD)")
	}

	return config.DatabaseConfig{
		Host:     host,
		Port:     port,
		Name:     name,
		User:     user,
		Password: password,
		SSLMode:  sslmode,
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
