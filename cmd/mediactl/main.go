// Command mediactl checks and maintains the property media tables and the
// image folders behind them.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/dlomaxw/shinebebright-sub001/internal/auth"
	"github.com/dlomaxw/shinebebright-sub001/internal/config"
	"github.com/dlomaxw/shinebebright-sub001/internal/database"
	"github.com/dlomaxw/shinebebright-sub001/internal/logging"
	"github.com/dlomaxw/shinebebright-sub001/internal/media"
	"github.com/dlomaxw/shinebebright-sub001/internal/registry"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var configPath string

func main() {
	_ = godotenv.Load()

	rootCommand := &cobra.Command{
		Use:           "mediactl",
		Short:         "Property media maintenance",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCommand.PersistentFlags().StringVar(&configPath, "config", config.GetEnv("CONFIG_PATH", "config/site.yaml"), "path to the site config")

	rootCommand.AddCommand(
		validateCommand(),
		bindCommand(),
		thumbnailsCommand(),
		resolveCommand(),
		userCommand(),
	)

	if err := rootCommand.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	logging.Init(cfg.Logging)
	return cfg, nil
}

func openDB(cfg *config.Config) (*database.GormDB, error) {
	gdb, err := database.Open(cfg.Database, logging.NewGormLogger(cfg.Logging.LogQueries))
	if err != nil {
		return nil, err
	}
	if err := gdb.InitSchema(); err != nil {
		gdb.Close()
		return nil, err
	}
	return gdb, nil
}

func validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the media and video tables for inconsistencies",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := registry.Default()
			err := reg.Validate()
			var cerr *registry.ConfigError
			if errors.As(err, &cerr) {
				for _, p := range cerr.Problems {
					fmt.Println("  -", p)
				}
				return fmt.Errorf("%d problem(s) found", len(cerr.Problems))
			}
			if err != nil {
				return err
			}
			fmt.Printf("OK: %d properties, %d videos, %d developers\n",
				len(reg.Entries()), len(reg.Videos()), len(reg.Developers()))
			return nil
		},
	}
}

func bindCommand() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "bind",
		Short: "Bind every registry title to its stored row id",
		Long: "Resolves every title in the media and video tables to exactly one stored " +
			"property or project. Any unmatched or ambiguous title fails the run and " +
			"nothing is written.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			gdb, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer gdb.Close()

			bindings, err := registry.Default().Bind(gdb.TitleIndex())
			var uerr *registry.UnmatchedTitlesError
			if errors.As(err, &uerr) {
				for _, title := range uerr.Unmatched {
					fmt.Printf("  unmatched: %s\n", title)
				}
				for title, matches := range uerr.Ambiguous {
					fmt.Printf("  ambiguous: %s (%d rows)\n", title, len(matches))
				}
				return err
			}
			if err != nil {
				return err
			}

			for _, b := range bindings {
				fmt.Printf("  %-50s -> %s %s\n", b.Title, b.EntityType, b.EntityID)
			}
			if dryRun {
				fmt.Printf("Dry run: %d bindings not saved\n", len(bindings))
				return nil
			}
			if err := gdb.SaveBindings(bindings); err != nil {
				return err
			}
			fmt.Printf("Saved %d bindings\n", len(bindings))
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "resolve without saving")
	return cmd
}

func thumbnailsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "thumbnails",
		Short: "Generate missing or stale thumbnails once",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			gen := media.NewThumbnailGenerator(cfg.Media.RootDir, cfg.Media.ThumbnailWidth, cfg.Media.ThumbnailHeight, cfg.Media.Workers)
			folders := append(registry.Default().Folders(), media.Categories...)
			result, err := gen.Generate(ctx, folders)
			if err != nil {
				return err
			}

			log.Info().
				Int64("scanned", result.Scanned).
				Int64("generated", result.Generated).
				Int64("skipped", result.Skipped).
				Int64("failed", result.Failed).
				Int64("removed", result.Removed).
				Dur("duration", result.Duration).
				Msg("thumbnails done")
			for _, c := range result.Conflicts {
				fmt.Println("  conflict:", c)
			}
			for _, e := range result.Errors {
				fmt.Println("  error:", e)
			}
			if result.Failed > 0 || len(result.Conflicts) > 0 {
				return fmt.Errorf("%d failed, %d conflicts", result.Failed, len(result.Conflicts))
			}
			return nil
		},
	}
}

func resolveCommand() *cobra.Command {
	var (
		category  string
		thumbnail bool
		title     string
	)
	cmd := &cobra.Command{
		Use:   "resolve [images]",
		Short: "Print the URLs an images value or a registry title resolves to",
		Example: `  mediactl resolve '["a.jpg","b.jpg"]' --category commercial
  mediactl resolve --title "VAAL Kololo Gardens" --thumbnail`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var urls []string
			switch {
			case title != "":
				urls = registry.Default().PropertyImageURLs(title, thumbnail)
				if urls == nil {
					return fmt.Errorf("no registry entry for %q", title)
				}
			case len(args) == 1:
				urls = media.ResolvePropertyImages(args[0], media.ResolveConfig{Category: category, UseThumbnail: thumbnail})
			default:
				return cmd.Usage()
			}
			for _, u := range urls {
				fmt.Println(u)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "category or developer folder")
	cmd.Flags().BoolVar(&thumbnail, "thumbnail", false, "resolve under the thumbnail folder")
	cmd.Flags().StringVar(&title, "title", "", "resolve a registry title instead")
	return cmd
}

func userCommand() *cobra.Command {
	userCommand := &cobra.Command{
		Use:   "user",
		Short: "Manage admin accounts",
	}
	userCommand.AddCommand(&cobra.Command{
		Use:   "set-password [username] [password]",
		Short: "Create an admin account or replace its password",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			gdb, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer gdb.Close()

			hash, err := auth.HashPassword(args[1])
			if err != nil {
				return err
			}
			user, err := gdb.SetUserPassword(args[0], hash)
			if err != nil {
				return err
			}
			fmt.Printf("Password set for '%s'\n", user.Username)
			return nil
		},
	})
	return userCommand
}
