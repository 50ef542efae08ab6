package main

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/brinaregal/brina/internal/bootstrap"
	"github.com/brinaregal/brina/internal/config"
	"github.com/brinaregal/brina/internal/migrations"
	"github.com/brinaregal/brina/internal/support/logging"
)

func init() {
	// Migrate
	var migrateStatus bool
	var migrateRollback bool
	var migrateCmd = &cobra.Command{
		Use:   "migrate [up|down|status]",
		Short: "Database migration management",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			db, err := bootstrap.OpenSQLite(cfg.DB.Path)
			if err != nil {
				return err
			}
			fmt.Printf("Using DB path: %s\n", cfg.DB.Path)
			defer db.Close()

			if migrateStatus {
				return migrations.Status(db)
			}
			if migrateRollback {
				return migrations.Down(db)
			}

			action := "up"
			if len(args) > 0 {
				action = args[0]
			}

			switch action {
			case "up":
				return migrations.Up(db)
			case "down":
				return migrations.Down(db)
			case "status":
				return migrations.Status(db)
			default:
				return fmt.Errorf("unknown migrate action %q", action)
			}
		},
	}
	migrateCmd.Flags().BoolVar(&migrateStatus, "status", false, "Show migration status")
	migrateCmd.Flags().BoolVar(&migrateRollback, "rollback", false, "Rollback the last migration")
	rootCmd.AddCommand(migrateCmd)

	// Backup
	var backupOutput string
	var backupCompress bool
	var backupCmd = &cobra.Command{
		Use:   "backup",
		Short: "Backup database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			target := backupOutput
			if target == "" {
				ext := ".db"
				if backupCompress {
					ext += ".gz"
				}
				filename := fmt.Sprintf("brina_%s%s", time.Now().Format("20060102_150405"), ext)
				target = filepath.Join(filepath.Dir(cfg.DB.Path), "backups", filename)
			}

			db, err := bootstrap.OpenSQLite(cfg.DB.Path)
			if err != nil {
				return err
			}
			defer db.Close()

			snapshot := target
			if backupCompress {
				snapshot = strings.TrimSuffix(target, ".gz") + ".tmp"
			}
			if err := bootstrap.BackupSQLite(cmd.Context(), db, snapshot); err != nil {
				return err
			}

			if backupCompress {
				err := compressFile(snapshot, target)
				os.Remove(snapshot)
				if err != nil {
					return err
				}
			}

			fmt.Printf("Backup created at %s\n", target)
			return nil
		},
	}
	backupCmd.Flags().StringVar(&backupOutput, "output", "", "Output file path")
	backupCmd.Flags().BoolVar(&backupCompress, "compress", false, "Compress output with gzip")
	rootCmd.AddCommand(backupCmd)

	// Restore
	var restoreCmd = &cobra.Command{
		Use:   "restore <backup-file>",
		Short: "Restore database from backup (stop the server first)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			backupPath := args[0]
			if _, err := os.Stat(backupPath); err != nil {
				return fmt.Errorf("backup file not found: %w", err)
			}

			dbPath := cfg.DB.Path
			// Auto-backup before restore
			if _, err := os.Stat(dbPath); err == nil {
				bakPath := dbPath + ".pre_restore_" + time.Now().Format("20060102_150405")
				if err := snapshotDatabase(cmd.Context(), dbPath, bakPath); err != nil {
					return fmt.Errorf("failed to backup current db: %w", err)
				}
				fmt.Printf("Current database backed up to %s\n", bakPath)
			}

			sourceFile := backupPath
			if strings.HasSuffix(backupPath, ".gz") {
				tempSource := dbPath + ".restoring"
				if err := decompressFile(backupPath, tempSource); err != nil {
					return fmt.Errorf("decompress failed: %w", err)
				}
				sourceFile = tempSource
				defer os.Remove(tempSource)
			}

			if err := copyFile(sourceFile, dbPath); err != nil {
				return fmt.Errorf("restore failed: %w", err)
			}
			// a leftover WAL would be replayed over the restored file
			for _, suffix := range []string{"-wal", "-shm"} {
				if err := os.Remove(dbPath + suffix); err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("remove %s: %w", dbPath+suffix, err)
				}
			}

			fmt.Println("Database restored successfully.")
			return nil
		},
	}
	rootCmd.AddCommand(restoreCmd)

	// Job
	var jobCmd = &cobra.Command{
		Use:   "job",
		Short: "Background job management",
	}
	jobCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List registered jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				scheduler, err := bootstrap.BuildScheduler(a.infra, a.services, a.logger)
				if err != nil {
					return err
				}
				fmt.Println("Available jobs:")
				for _, name := range scheduler.Jobs() {
					fmt.Println("- " + name)
				}
				return nil
			})
		},
	})
	jobCmd.AddCommand(&cobra.Command{
		Use:   "run <name>",
		Short: "Run a job manually",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				scheduler, err := bootstrap.BuildScheduler(a.infra, a.services, a.logger)
				if err != nil {
					return err
				}
				name := args[0]
				fmt.Printf("Running job %s...\n", name)
				if err := scheduler.RunNow(ctx, name); err != nil {
					return fmt.Errorf("job run failed: %w", err)
				}
				// jobs may queue notifications of their own
				a.flushNotifications(ctx)
				fmt.Println("Job completed successfully.")
				return nil
			})
		},
	})
	rootCmd.AddCommand(jobCmd)

	// Version
	var versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Brina'Régal %s\n", Version)
			fmt.Printf("Commit: %s\n", Commit)
			fmt.Printf("Build Time: %s\n", BuildTime)
		},
	}
	rootCmd.AddCommand(versionCmd)
}

// Helper functions

// withApp runs fn against a fully wired backend and closes it afterwards.
func withApp(ctx context.Context, fn func(ctx context.Context, a *app) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := openApp(ctx, logging.Discard(), time.Now().UTC())
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

// snapshotDatabase 通过 VACUUM INTO 备份，WAL 中尚未回写的数据也会包含在内。
func snapshotDatabase(ctx context.Context, dbPath, target string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	db, err := bootstrap.OpenSQLite(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()
	return bootstrap.BackupSQLite(ctx, db, target)
}

// File utils
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}

func compressFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	gw := gzip.NewWriter(out)
	if _, err := io.Copy(gw, in); err != nil {
		gw.Close()
		return err
	}
	return gw.Close()
}

func decompressFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	gr, err := gzip.NewReader(in)
	if err != nil {
		return err
	}
	defer gr.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, gr); err != nil {
		return err
	}
	return nil
}
