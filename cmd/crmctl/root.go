package main

import (
	"context"
	"fmt"
	"os"

	"leaddesk_backend/internal/access"
	authrepo "leaddesk_backend/internal/auth/repository"
	leadrepo "leaddesk_backend/internal/leads/repository"
	leadservice "leaddesk_backend/internal/leads/service"
	"leaddesk_backend/platform/config"
	"leaddesk_backend/platform/db"
	"leaddesk_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

// env is what every subcommand needs. It is opened lazily so --help works
// without a database.
type env struct {
	cfg  *config.Config
	log  *logger.Logger
	pool *pgxpool.Pool
}

func openEnv(ctx context.Context, verbose bool) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log := logger.Discard()
	if verbose {
		log = logger.New(cfg.Env)
	}
	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return &env{cfg: cfg, log: log, pool: pool}, nil
}

func (e *env) Close() {
	e.pool.Close()
}

func (e *env) leads() (*leadservice.Service, *leadrepo.Repository) {
	repo := leadrepo.New(e.pool)
	return leadservice.New(repo, nil, nil, e.cfg, e.log.WithComponent("leads")), repo
}

// actor resolves an operator email to a profile allowed to perform action.
func (e *env) actor(ctx context.Context, email string, action access.Action) (leadservice.Actor, error) {
	if email == "" {
		return leadservice.Actor{}, fmt.Errorf("--as is required")
	}
	creds, err := authrepo.New(e.pool).GetCredentialsByEmail(ctx, email)
	if err != nil {
		return leadservice.Actor{}, fmt.Errorf("look up %s: %w", email, err)
	}
	role, ok := access.ParseRole(creds.Role)
	if !ok || !creds.IsActive || !access.Can(role, action) {
		return leadservice.Actor{}, fmt.Errorf("%s may not %s", email, action)
	}
	return leadservice.Actor{ID: creds.ID, Role: role}, nil
}

type runFunc func(cmd *cobra.Command, e *env, args []string) error

// withEnv opens the environment for the duration of one command.
func withEnv(fn runFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		e, err := openEnv(cmd.Context(), verbose)
		if err != nil {
			return err
		}
		defer e.Close()
		return fn(cmd, e, args)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "crmctl",
		Short:         "LeadDesk operator tool",
		Long:          `Operator commands for LeadDesk: migrations, lock cleanup, stuck-lead recovery, reports and exports.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().BoolP("verbose", "v", false, "log service output to stderr")
	cmd.SetOut(os.Stdout)

	cmd.AddCommand(migrateCmd())
	cmd.AddCommand(locksCmd())
	cmd.AddCommand(leadsCmd())
	cmd.AddCommand(leaderboardCmd())
	cmd.AddCommand(exportCmd())

	return cmd
}
