package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"

	"github.com/rs/zerolog"

	"github.com/ksred/ironforge/internal/config"
	"github.com/ksred/ironforge/internal/database"
	"github.com/ksred/ironforge/internal/services"
	"github.com/ksred/ironforge/internal/utils"
)

type options struct {
	mode         string
	pending      bool
	seedUsers    int
	postsPerUser int
	roles        int
}

func main() {
	var (
		configPath = flag.String("config", "", "Path to configuration file")
		mode       = flag.String("mode", "run", "Migration mode: run, rollback, refresh, fresh, down, reset or status")
		pending    = flag.Bool("pending", false, "List pending migrations and exit")
		seed       = flag.Int("seed", 0, "Number of users to seed after migrating")
		posts      = flag.Int("posts", 3, "Posts per seeded user")
		roles      = flag.Int("roles", 3, "Roles shared by the seeded users")
		logLevel   = flag.String("log-level", "info", "Log level")
	)
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := utils.NewLogger(utils.CLIConfig(*logLevel))

	db := database.NewDatabase(cfg.Database, logger)
	defer db.Close()

	ok, err := execute(context.Background(), db, options{
		mode:         *mode,
		pending:      *pending,
		seedUsers:    *seed,
		postsPerUser: *posts,
		roles:        *roles,
	}, os.Stdout, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Migration failed")
	}
	if !ok {
		os.Exit(1)
	}
}

// execute runs the requested mode against db and writes a report to out.
// It returns false when any migration failed.
func execute(ctx context.Context, db *database.Database, opts options, out io.Writer, logger zerolog.Logger) (bool, error) {
	migrationService, err := services.NewDefaultMigrationService(db, logger)
	if err != nil {
		return false, err
	}

	if opts.pending {
		names, err := migrationService.Pending(ctx)
		if err != nil {
			return false, err
		}
		for _, name := range names {
			fmt.Fprintln(out, name)
		}
		return true, nil
	}

	result, err := migrationService.Migrate(ctx, opts.mode)
	if err != nil {
		return false, err
	}
	printResult(out, result)

	if opts.seedUsers > 0 && result.Success {
		seedService, err := services.NewSeedService(db, nil, logger)
		if err != nil {
			return false, err
		}
		seeded, err := seedService.Seed(ctx, services.SeedRequest{
			Users:        opts.seedUsers,
			PostsPerUser: opts.postsPerUser,
			Roles:        opts.roles,
		})
		if err != nil {
			return false, fmt.Errorf("failed to seed: %w", err)
		}
		fmt.Fprintf(out, "seeded %d users, %d posts, %d roles\n", seeded.Users, seeded.Posts, seeded.Roles)
	}

	return result.Success, nil
}

func printResult(out io.Writer, result *services.MigrationResult) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	defer w.Flush()

	if result.Mode == string(database.ModeStatus) {
		fmt.Fprintln(w, "MIGRATION\tEXECUTED AT")
		for _, h := range result.History {
			fmt.Fprintf(w, "%s\t%s\n", h.Migration, h.ExecutedAt.Format("2006-01-02 15:04:05"))
		}
		return
	}

	fmt.Fprintln(w, "MIGRATION\tACTION\tERROR")
	for _, o := range result.Outcomes {
		fmt.Fprintf(w, "%s\t%s\t%s\n", o.Migration, o.Action, o.Error)
	}
}
