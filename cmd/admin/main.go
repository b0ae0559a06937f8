// Command admin manages groups, admin accounts and the page cache.
package main

import (
	"fmt"
	"io"
	"os"

	"yatube/internal/cache"
	"yatube/internal/config"
	"yatube/internal/database"
	"yatube/internal/repository"
	"yatube/internal/service"

	"github.com/fatih/color"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	okColor   = color.New(color.FgGreen, color.Bold)
	warnColor = color.New(color.FgYellow)
	errColor  = color.New(color.FgHiRed, color.Bold)
)

// env holds what the commands need. Connections are opened on first use.
type env struct {
	cfg *config.Config
	db  *gorm.DB
	rdb *redis.Client
}

func (e *env) database() (*gorm.DB, error) {
	if e.db != nil {
		return e.db, nil
	}
	if err := e.loadConfig(); err != nil {
		return nil, err
	}
	db, err := database.Connect(e.cfg)
	if err != nil {
		return nil, err
	}
	e.db = db
	return db, nil
}

func (e *env) redis() (*redis.Client, error) {
	if e.rdb != nil {
		return e.rdb, nil
	}
	if err := e.loadConfig(); err != nil {
		return nil, err
	}
	if e.cfg.RedisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is not set")
	}
	client, err := cache.NewClient(e.cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	e.rdb = client
	return client, nil
}

func (e *env) loadConfig() error {
	if e.cfg != nil {
		return nil
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	e.cfg = cfg
	return nil
}

func (e *env) groups() (*service.GroupService, error) {
	db, err := e.database()
	if err != nil {
		return nil, err
	}
	// group writes drop the slug cache the server reads
	rdb := e.rdb
	if rdb == nil && e.cfg != nil && e.cfg.RedisURL != "" {
		if rdb, err = e.redis(); err != nil {
			warnColor.Fprintln(os.Stderr, "Redis unavailable, cached groups may stay stale:", err)
		}
	}
	return service.NewGroupService(repository.NewGroupRepository(db, rdb)), nil
}

func (e *env) users() (*service.UserService, error) {
	db, err := e.database()
	if err != nil {
		return nil, err
	}
	return service.NewUserService(repository.NewUserRepository(db)), nil
}

func newRootCmd(e *env) *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "Yatube administration",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newGroupsCmd(e), newUsersCmd(e), newCacheCmd(e))
	return root
}

func main() {
	root := newRootCmd(&env{})
	if err := root.Execute(); err != nil {
		errColor.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func success(w io.Writer, format string, args ...any) {
	okColor.Fprintf(w, "✓ "+format+"\n", args...)
}
