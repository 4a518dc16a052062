package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newImportCmd(a *app) *cobra.Command {
	var (
		slotFlag int
		file     string
	)
	cmd := &cobra.Command{
		Use:   "import [token]",
		Short: "Decode a portable token into a preset",
		Long: "Decodes a token, backfills any fields it lacks from the defaults and saves it. " +
			"The token is read from the argument, --file, or standard input.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := readToken(cmd, args, file)
			if err != nil {
				return err
			}

			pm, closeStore, err := a.openPresets()
			if err != nil {
				return err
			}
			defer a.closeStorage(closeStore)

			i, err := slot(pm, slotFlag)
			if err != nil {
				return err
			}
			cfg, err := pm.Import(token)
			if err != nil {
				return err
			}
			if err := pm.Save(i, cfg); err != nil {
				return err
			}
			name := pm.Snapshot().Presets[i].Name
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported %q into slot %d (%s)\n", cfg.ConfigName, i, name)
			return err
		},
	}
	cmd.Flags().IntVar(&slotFlag, "slot", -1, "preset slot to save into (default: active)")
	cmd.Flags().StringVar(&file, "file", "", "read the token from this file")
	return cmd
}

func readToken(cmd *cobra.Command, args []string, file string) (string, error) {
	switch {
	case len(args) == 1 && file != "":
		return "", errors.New("pass the token as an argument or with --file, not both")
	case len(args) == 1:
		return args[0], nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read token: %w", err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", errors.New("no token given")
	}
	return string(data), nil
}
