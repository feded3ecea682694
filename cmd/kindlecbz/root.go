package main

import (
	"context"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/kindlecbz/cmd/kindlecbz/commands"
	"github.com/walteh/kindlecbz/cmd/kindlecbz/opts"
	"github.com/walteh/kindlecbz/pkg/config"
	"github.com/walteh/kindlecbz/pkg/log"
	"gitlab.com/tozd/go/errors"
)

var (
	// Flags
	configFile string
	envFile    string
	debug      bool
)

// newRootCmd builds the command tree; options are filled in once flags are parsed
func newRootCmd() *cobra.Command {
	rootOpts := &opts.RootOpts{}

	rootCmd := &cobra.Command{
		Use:   "kindlecbz",
		Short: "Convert manga and comic pages into Kindle-ready CBZ archives",
		Long: `kindlecbz turns folders of page images, CBZ/ZIP archives and single images into
CBZ archives whose pages are exactly the resolution of an e-reader screen.

Every page is scaled to fit, centred on a white or black canvas, lightly sharpened
and contrast-boosted, then stored as a numbered JPEG.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx := setupLogging(cmd.Context())
			cmd.SetContext(ctx)

			loaded, err := newRootOpts(ctx)
			if err != nil {
				return err
			}
			*rootOpts = *loaded
			return nil
		},
	}

	addRootFlags(rootCmd)

	rootCmd.AddCommand(
		commands.NewConvertCmd(rootOpts),
		commands.NewPresetsCmd(rootOpts),
		commands.NewInspectCmd(rootOpts),
		newVersionCmd(),
	)

	return rootCmd
}

// newRootOpts loads .env, the config file and KINDLECBZ_* overrides, in that order
func newRootOpts(ctx context.Context) (*opts.RootOpts, error) {
	logger := zerolog.Ctx(ctx)

	if err := godotenv.Load(envFile); err != nil {
		if !errors.Is(err, fs.ErrNotExist) || envFile != ".env" {
			return nil, errors.Errorf("loading env file %s: %w", envFile, err)
		}
		logger.Debug().Str("path", envFile).Msg("no env file")
	}

	cfg := config.Default()
	if configFile != "" {
		loaded, err := config.Load(ctx, configFile)
		if err != nil {
			return nil, errors.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	if err := config.ApplyEnv(&cfg, os.LookupEnv); err != nil {
		return nil, errors.Errorf("applying environment: %w", err)
	}

	level := zerolog.WarnLevel
	if debug {
		level = zerolog.DebugLevel
	}

	return &opts.RootOpts{
		Config: cfg,
		Logger: log.NewWithZerolog(consoleWriter{}, zerolog.Ctx(ctx).Level(level)),
		Debug:  debug,
	}, nil
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path (.yaml, .yml, .json or .hcl)")
	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file with KINDLECBZ_* overrides")
	cmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")
}

// setupLogging configures zerolog based on flags
func setupLogging(ctx context.Context) context.Context {
	level := zerolog.WarnLevel
	if debug {
		level = zerolog.DebugLevel
		pterm.EnableDebugMessages()
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
	return logger.WithContext(ctx)
}

// consoleWriter prints through pterm so lines land above an active progress bar
type consoleWriter struct{}

func (consoleWriter) Write(p []byte) (int, error) {
	pterm.Print(string(p))
	return len(p), nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.Print(FormatVersion())
			return nil
		},
	}
}
