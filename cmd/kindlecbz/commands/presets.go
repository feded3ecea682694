package commands

import (
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/walteh/kindlecbz/cmd/kindlecbz/opts"
	"github.com/walteh/kindlecbz/pkg/config"
	"gitlab.com/tozd/go/errors"
)

// NewPresetsCmd creates the presets command
func NewPresetsCmd(opts *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List the device presets",
		Long: `Presets lists every device the --device flag (or the "device" config key) accepts.
Either the slug or the display name can be used; matching ignores case.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := opts.Config.Presets
			if presets == nil {
				presets = config.DefaultPresets()
			}

			table := presetTable(presets, opts.Config.Device)
			if err := pterm.DefaultTable.WithHasHeader().WithWriter(cmd.OutOrStdout()).WithData(table).Render(); err != nil {
				return errors.Errorf("rendering presets: %w", err)
			}
			return nil
		},
	}
}

// presetTable builds the table rows, marking the selected device
func presetTable(presets config.Presets, selected string) pterm.TableData {
	data := pterm.TableData{{"", "Slug", "Device", "Width", "Height"}}
	for _, p := range presets {
		mark := ""
		if p.Slug == selected {
			mark = "●"
		}
		data = append(data, []string{
			mark,
			p.Slug,
			p.Name,
			strconv.Itoa(p.Geometry.Width),
			strconv.Itoa(p.Geometry.Height),
		})
	}
	return data
}
