package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dshills/listsync/internal/config"
	"github.com/dshills/listsync/internal/diff"
)

// cli holds state shared by all subcommands. It is filled in by the root
// command's pre-run hook.
type cli struct {
	configPath string
	logLevel   string

	cfg    config.Config
	logger zerolog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{logger: zerolog.Nop()}

	root := &cobra.Command{
		Use:   "listsync",
		Short: "Compute observable edit scripts between JSON lists",
		Long: `listsync compares lists of JSON values by identity and content and
prints the insert, remove, change and move operations that turn one into
the other, in the order an observer must apply them.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}

	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "Path to configuration file (.toml, .yaml)")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	root.AddCommand(
		newDiffCmd(c),
		newSortCmd(c),
		newWatchCmd(c),
		newVersionCmd(),
	)
	return root
}

// setup loads the configuration and builds the logger.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	var paths []string
	if c.configPath != "" {
		// An explicit file must exist; the loader skips missing ones.
		if _, err := os.Stat(c.configPath); err != nil {
			return fmt.Errorf("config: %w", err)
		}
		paths = append(paths, c.configPath)
	}

	cfg, err := config.Load(paths...)
	if err != nil {
		return err
	}
	if c.logLevel != "" {
		cfg.Logging.Level = c.logLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	logger, err := cfg.Logger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	c.cfg = cfg
	c.logger = logger.With().Str("cmd", cmd.Name()).Logger()
	c.logger.Debug().
		Str("config", c.configPath).
		Str("replaceMode", cfg.Store.ReplaceMode).
		Bool("detectMoves", cfg.Store.DetectMoves).
		Int("maxEditDistance", cfg.Store.MaxEditDistance).
		Msg("configuration loaded")
	return nil
}

// idPath returns flag when set, otherwise the configured identity path.
func (c *cli) idPath(flag string) string {
	if flag != "" {
		return flag
	}
	return c.cfg.Source.IDPath
}

// diffOptions returns the diff options implied by the configuration.
func (c *cli) diffOptions(noMoves bool) []diff.Option {
	return []diff.Option{
		diff.WithDetectMoves(c.cfg.Store.DetectMoves && !noMoves),
		diff.WithMaxEditDistance(c.cfg.Store.MaxEditDistance),
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "listsync %s\n", version)
			fmt.Fprintf(out, "Commit: %s\n", commit)
			fmt.Fprintf(out, "Built: %s\n", date)
			return nil
		},
	}
}
