package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"uma-config/codec"
)

// clipboardWrite is swapped out in tests.
var clipboardWrite = clipboard.WriteAll

func newExportCmd(a *app) *cobra.Command {
	var (
		slotFlag int
		copyFlag bool
		outDir   string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print the portable token for a preset",
		Long: "Encodes a preset's configuration as a portable token. " +
			"The token can be copied to the clipboard or written to a file named after the configuration.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pm, closeStore, err := a.openPresets()
			if err != nil {
				return err
			}
			defer a.closeStorage(closeStore)

			i, err := slot(pm, slotFlag)
			if err != nil {
				return err
			}
			cfg := pm.Snapshot().Presets[i].Config
			token, err := codec.Encode(cfg)
			if err != nil {
				return err
			}

			if outDir != "" {
				path := filepath.Join(outDir, codec.FileName(cfg))
				if err := os.WriteFile(path, []byte(token), 0o644); err != nil {
					return fmt.Errorf("write token: %w", err)
				}
				a.log.WithField("path", path).Info("token written")
			}
			if copyFlag {
				if err := clipboardWrite(token); err != nil {
					return fmt.Errorf("copy token: %w", err)
				}
				a.log.Info("token copied to clipboard")
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	cmd.Flags().IntVar(&slotFlag, "slot", -1, "preset slot to export (default: active)")
	cmd.Flags().BoolVar(&copyFlag, "copy", false, "also copy the token to the clipboard")
	cmd.Flags().StringVar(&outDir, "out", "", "also write the token into this directory")
	return cmd
}
