package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/maatrinet/maatrinet/internal/config"
	"github.com/maatrinet/maatrinet/internal/domain/beneficiary"
	"github.com/maatrinet/maatrinet/internal/domain/facility"
	"github.com/maatrinet/maatrinet/internal/domain/identity"
	"github.com/maatrinet/maatrinet/internal/domain/maternity"
	"github.com/maatrinet/maatrinet/internal/domain/scheme"
	"github.com/maatrinet/maatrinet/internal/ingest"
	"github.com/maatrinet/maatrinet/internal/platform/db"
	"github.com/maatrinet/maatrinet/internal/recompute"
	"github.com/maatrinet/maatrinet/internal/risk"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "maatrinet",
		Short: "Maternal and child health derived-state engine",
	}

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(ingestCmd())
	rootCmd.AddCommand(recomputeCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return logger
}

func openPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return pool, nil
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := openPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := openPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func ingestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Ingest a maternal-health source table export",
		RunE: func(cmd *cobra.Command, args []string) error {
			sourcePath, _ := cmd.Flags().GetString("source")
			if sourcePath == "" {
				return fmt.Errorf("--source is required")
			}

			logger := newLogger()
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := openPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			f, err := os.Open(sourcePath)
			if err != nil {
				return fmt.Errorf("open source file: %w", err)
			}
			defer f.Close()

			src, err := ingest.NewSource(f)
			if err != nil {
				return err
			}

			engine := risk.NewEngine(risk.LoadRegistry(cfg.ModelDir, logger), logger)
			pipeline := ingest.NewPipeline(
				identity.NewService(identity.NewUserRepoPG(pool), logger),
				facility.NewService(facility.NewHospitalRepoPG(pool), logger),
				beneficiary.NewService(beneficiary.NewRepoPG(pool), logger),
				maternity.NewService(
					maternity.NewPregnancyRepoPG(pool),
					maternity.NewDeliveryRepoPG(pool),
					maternity.NewChildRepoPG(pool),
					engine, logger),
				scheme.NewService(scheme.NewRepoPG(pool), logger),
				pool, cfg.IngestBatchSize, logger,
			)

			res, err := pipeline.Run(ctx, src)
			if err != nil {
				return err
			}
			fmt.Printf("Ingested %d row(s): %d pregnancies, %d deliveries, %d children, %d applications (%d failed).\n",
				res.RowsRead, res.Pregnancies, res.Deliveries, res.Children, res.Applications, res.RowsFailed)
			return nil
		},
	}
	cmd.Flags().String("source", "", "Path to the source table CSV export")
	return cmd
}

func recomputeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recompute",
		Short: "Recompute derived risk state for all records",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := openPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			engine := risk.NewEngine(risk.LoadRegistry(cfg.ModelDir, logger), logger)
			job := recompute.NewJob(
				maternity.NewPregnancyRepoPG(pool),
				maternity.NewDeliveryRepoPG(pool),
				maternity.NewChildRepoPG(pool),
				engine, logger)

			s, err := job.Run(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Recomputed %d pregnancies, %d deliveries, %d children (%d failed, %d high risk).\n",
				s.Pregnancies, s.Deliveries, s.Children, s.Failed, s.HighRisk)
			return nil
		},
	}
}
