// Package cli is the uma-config command line.
package cli

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"uma-config/config"
	"uma-config/kv"
	"uma-config/preset"
)

// EnvPrefix prefixes every environment variable read by the CLI, e.g.
// UMA_CONFIG_DATA_DIR.
const EnvPrefix = "UMA_CONFIG"

const (
	keyAddr      = "addr"
	keyDataDir   = "data-dir"
	keyBackend   = "backend"
	keyLogLevel  = "log-level"
	keyLogFormat = "log-format"
)

// openStore is swapped out in tests.
var openStore = kv.Open

// app carries what every subcommand shares.
type app struct {
	v   *viper.Viper
	log *logrus.Logger
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New(), log: logrus.New()}
	a.v.SetEnvPrefix(EnvPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "uma-config",
		Short:         "Manage training bot configuration presets",
		Long:          "Stores ten named configuration presets, migrates them across schema changes and shares them as portable tokens.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setupLogger(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.String(keyDataDir, "./data", "directory holding the preset store")
	flags.String(keyBackend, kv.BackendFile, "storage backend: file, badger or memory")
	flags.String(keyLogLevel, "info", "log level")
	flags.String(keyLogFormat, "text", "log format: text or json")
	for _, k := range []string{keyDataDir, keyBackend, keyLogLevel, keyLogFormat} {
		_ = a.v.BindPFlag(k, flags.Lookup(k))
	}

	cmd.AddCommand(
		newServeCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newPresetsCmd(a),
	)
	return cmd
}

func (a *app) setupLogger(cmd *cobra.Command) error {
	a.log.SetOutput(cmd.ErrOrStderr())

	level, err := logrus.ParseLevel(a.v.GetString(keyLogLevel))
	if err != nil {
		return err
	}
	a.log.SetLevel(level)

	switch f := a.v.GetString(keyLogFormat); f {
	case "json":
		a.log.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		a.log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return fmt.Errorf("unknown log format %q", f)
	}
	return nil
}

// openPresets opens the configured backend and loads the preset store from
// it. The returned function closes the backend.
func (a *app) openPresets(opts ...preset.Option) (*preset.Manager, func() error, error) {
	store, closeStore, err := openStore(a.v.GetString(keyBackend), a.v.GetString(keyDataDir))
	if err != nil {
		return nil, nil, fmt.Errorf("open storage: %w", err)
	}
	opts = append([]preset.Option{preset.WithLogger(a.log)}, opts...)
	pm, err := preset.NewManager(store, config.Default(), opts...)
	if err != nil {
		_ = closeStore()
		return nil, nil, err
	}
	return pm, closeStore, nil
}

// closeStorage runs closeStore and logs its error.
func (a *app) closeStorage(closeStore func() error) {
	if err := closeStore(); err != nil {
		a.log.WithError(err).Warn("close storage")
	}
}

// slot resolves a --slot value, where -1 means the active preset.
func slot(pm *preset.Manager, i int) (int, error) {
	if i == -1 {
		return pm.ActiveIndex(), nil
	}
	if i < 0 || i >= len(pm.Snapshot().Presets) {
		return 0, fmt.Errorf("%w: %d", preset.ErrOutOfRange, i)
	}
	return i, nil
}
