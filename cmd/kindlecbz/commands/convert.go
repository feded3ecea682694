package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/walteh/kindlecbz/cmd/kindlecbz/opts"
	"github.com/walteh/kindlecbz/pkg/config"
	"github.com/walteh/kindlecbz/pkg/log"
	"github.com/walteh/kindlecbz/pkg/operation"
	"github.com/walteh/kindlecbz/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// NewConvertCmd creates the convert command
func NewConvertCmd(opts *opts.RootOpts) *cobra.Command {
	var (
		verbose    bool
		noProgress bool
	)

	cmd := &cobra.Command{
		Use:   "convert <input>...",
		Short: "Convert folders, CBZ/ZIP archives or images into device CBZ archives",
		Long: `Convert processes each input as one volume, in the order given.
It will:
1. Collect the pages (folder images, archive entries or the single image) in natural order
2. Scale each page to the device screen and centre it on the background
3. Apply contrast and sharpening
4. Write "<input name> - kindle.cbz" into the output folder

A page that cannot be converted is reported and skipped; its number is left out.`,
		Example: `  kindlecbz convert "My Manga v01.cbz" "My Manga v02.cbz"
  kindlecbz convert --device kobo-libra-2 --background black ./scans
  kindlecbz convert --width 1264 --height 1680 -o out page.png`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg := opts.Config
			if err := applyFlags(cmd.Flags(), &cfg); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return errors.Errorf("validating options: %w", err)
			}

			zerolog.Ctx(ctx).Debug().Str("config", cfg.String()).Strs("inputs", args).Msg("starting conversion")

			logger := opts.Logger
			if logger == nil {
				logger = log.New(cmd.OutOrStdout(), zerolog.WarnLevel)
			}
			ctx = log.NewContext(ctx, logger)

			device := cfg.Device
			if device == "" {
				device = "custom " + cfg.Geometry.String()
			}
			logger.Header(fmt.Sprintf("converting %d input(s) for %s", len(args), device))
			if cfg.KeepTemp {
				logger.Infof("keeping scratch directories (%s*) in %s", operation.ScratchPrefix, os.TempDir())
			}

			view := &convertView{formatter: status.NewDefaultFormatter(), verbose: verbose}
			if !noProgress {
				started, err := pterm.DefaultProgressbar.WithTotal(100).WithTitle("Converting").WithRemoveWhenDone(true).Start()
				if err != nil {
					return errors.Errorf("starting progress bar: %w", err)
				}
				view.bar = started
				defer view.bar.Stop()
			}

			runner := operation.NewRunner(operation.NewProcessor(operation.Options{}), cfg)
			summary := runner.Run(ctx, args, func(ev operation.Event) {
				view.render(ctx, ev)
			})

			view.advance(100)

			logger.LogNewline()
			if !summary.OK() {
				logger.Warning(view.formatter.FormatSummary(summary))
				failed := len(summary.Volumes()) - summary.Count(status.StatusDone)
				return errors.Errorf("%d of %d volumes were not converted", failed, len(summary.Volumes()))
			}
			logger.Success(view.formatter.FormatSummary(summary))
			return nil
		},
	}

	addConvertFlags(cmd.Flags())
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print a line for every page")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "disable the progress bar")

	return cmd
}

func addConvertFlags(flags *pflag.FlagSet) {
	defaults := config.Default()

	flags.String("device", "", "device preset slug or name (see `kindlecbz presets`)")
	flags.Int("width", defaults.Geometry.Width, "target width in pixels (overrides --device)")
	flags.Int("height", defaults.Geometry.Height, "target height in pixels (overrides --device)")
	flags.String("background", defaults.Render.Background.String(), "canvas colour: white, black, #rrggbb or r,g,b")
	flags.Float64("sharpen", defaults.Render.Sharpen, "unsharp mask strength, 0 disables")
	flags.Float64("contrast", defaults.Render.Contrast, "contrast factor, 1.0 leaves pages unchanged")
	flags.Bool("no-sharpen", false, "skip sharpening")
	flags.Bool("no-contrast", false, "skip the contrast adjustment")
	flags.Int("quality", defaults.Render.JPEGQuality, "JPEG quality 1-100")
	flags.Bool("keep-temp", false, "keep scratch directories for debugging")
	flags.Int("workers", defaults.Workers, "pages converted in parallel within a volume")
	flags.StringSlice("ignore", nil, "doublestar patterns of page names to skip, e.g. '__MACOSX/**'")
	flags.StringP("output", "o", defaults.OutputDir, "output folder")
}

// applyFlags overlays the flags the user actually set; unset flags leave cfg alone
func applyFlags(flags *pflag.FlagSet, cfg *config.Config) error {
	var f config.File
	var err error

	str := func(name string) *string {
		if !flags.Changed(name) {
			return nil
		}
		v, ferr := flags.GetString(name)
		if ferr != nil {
			err = ferr
			return nil
		}
		return &v
	}
	integer := func(name string) *int {
		if !flags.Changed(name) {
			return nil
		}
		v, ferr := flags.GetInt(name)
		if ferr != nil {
			err = ferr
			return nil
		}
		return &v
	}
	float := func(name string) *float64 {
		if !flags.Changed(name) {
			return nil
		}
		v, ferr := flags.GetFloat64(name)
		if ferr != nil {
			err = ferr
			return nil
		}
		return &v
	}
	negated := func(name string) *bool {
		if !flags.Changed(name) {
			return nil
		}
		v, ferr := flags.GetBool(name)
		if ferr != nil {
			err = ferr
			return nil
		}
		v = !v
		return &v
	}

	f.Device = str("device")
	f.TargetWidth = integer("width")
	f.TargetHeight = integer("height")
	f.Background = str("background")
	f.Sharpen = float("sharpen")
	f.Contrast = float("contrast")
	f.DoSharpen = negated("no-sharpen")
	f.DoContrast = negated("no-contrast")
	f.JPEGQuality = integer("quality")
	f.Workers = integer("workers")
	f.OutputDir = str("output")

	if flags.Changed("keep-temp") {
		v, ferr := flags.GetBool("keep-temp")
		if ferr != nil {
			err = ferr
		}
		f.KeepTemp = &v
	}
	if flags.Changed("ignore") {
		v, ferr := flags.GetStringSlice("ignore")
		if ferr != nil {
			err = ferr
		}
		f.Ignore = v
	}

	if err != nil {
		return errors.Errorf("reading flags: %w", err)
	}

	if err := f.Apply(cfg); err != nil {
		return errors.Errorf("applying flags: %w", err)
	}
	return nil
}

// convertView renders runner events; without a progress bar it prints a count line per volume
type convertView struct {
	formatter *status.DefaultFormatter
	bar       *pterm.ProgressbarPrinter
	verbose   bool
}

func (v *convertView) render(ctx context.Context, ev operation.Event) {
	logger := log.FromContext(ctx)

	switch ev.Kind {
	case operation.EventVolumeStarted:
		logger.StartVolume(ctx, log.VolumeOperation{
			Name:  filepath.Base(ev.Input),
			Input: ev.Input,
			Index: ev.Index,
			Total: ev.Total,
		})
		if v.bar != nil {
			v.bar.UpdateTitle(fmt.Sprintf("Volume %d/%d", ev.Index, ev.Total))
		}
	case operation.EventLog:
		logger.Line(ev.Message)
	case operation.EventPage:
		if v.verbose {
			logger.LogPage(ctx, pageOperation(ev))
		}
	case operation.EventProgress:
		v.advance(ev.Percent)
	case operation.EventVolumeDone:
		logger.EndVolume(ctx, ev.Info)
		logger.Success(v.formatter.FormatVolume(ev.Info))
		if ev.Info.Failed > 0 {
			logger.Warningf("%d of %d pages in %s could not be converted", ev.Info.Failed, ev.Info.Attempted, filepath.Base(ev.Input))
		}
		v.advance(ev.Percent)
		v.count(ctx, ev)
	case operation.EventVolumeFailed:
		logger.EndVolume(ctx, ev.Info)
		logger.Error(v.formatter.FormatVolume(ev.Info))
		v.count(ctx, ev)
	}
}

// count prints "Progress: i/n" once a volume settles when no bar is shown
func (v *convertView) count(ctx context.Context, ev operation.Event) {
	if v.bar != nil {
		return
	}
	log.FromContext(ctx).Info(v.formatter.FormatProgress(ev.Index, ev.Total))
}

// advance moves the bar forward to percent; it never moves backwards
func (v *convertView) advance(percent float64) {
	if v.bar == nil {
		return
	}
	target := int(percent)
	if target > v.bar.Total {
		target = v.bar.Total
	}
	if target > v.bar.Current {
		v.bar.Add(target - v.bar.Current)
	}
}

func pageOperation(ev operation.Event) log.PageOperation {
	op := log.PageOperation{Index: ev.Page.Index, Total: ev.Page.Total, Name: ev.Page.Name, Output: ev.Page.Output}
	if ev.Page.Err != nil {
		op.Err = ev.Page.Err.Err
	}
	return op
}
