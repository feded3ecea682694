package commands

import (
	"fmt"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/walteh/kindlecbz/cmd/kindlecbz/opts"
	"github.com/walteh/kindlecbz/pkg/archive"
	"gitlab.com/tozd/go/errors"
)

// NewInspectCmd creates the inspect command
func NewInspectCmd(opts *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <archive>...",
		Short: "List the entries of CBZ archives",
		Long: `Inspect prints the entries of each archive in stored order with their size,
compression method and modification time. Archives written by convert list
NNNN.jpg entries, all stored, with gaps where pages failed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				infos, err := archive.List(path)
				if err != nil {
					return errors.Errorf("inspecting %s: %w", path, err)
				}

				fmt.Fprintln(cmd.OutOrStdout(), pterm.Bold.Sprint(path))
				if err := pterm.DefaultTable.WithHasHeader().WithWriter(cmd.OutOrStdout()).WithData(entryTable(infos)).Render(); err != nil {
					return errors.Errorf("rendering entries: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d entries\n", len(infos))
			}
			return nil
		},
	}
}

func entryTable(infos []archive.EntryInfo) pterm.TableData {
	data := pterm.TableData{{"Entry", "Size", "Method", "Modified"}}
	for _, info := range infos {
		method := "deflate"
		if info.Stored() {
			method = "store"
		}
		data = append(data, []string{
			info.Name,
			strconv.FormatUint(info.Size, 10),
			method,
			info.Modified.UTC().Format("2006-01-02 15:04:05"),
		})
	}
	return data
}
