package main

import (
	"strings"

	"github.com/MakeNowJust/heredoc"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/njchilds90/symcalc"
)

const envPrefix = "SYMCALC"

// ServerFlags holds the raw flag values. Config file and environment
// values are merged in through viper before conversion to options.
type ServerFlags struct {
	ConfigFile      string
	Mode            string
	ListenAddress   string
	LogLevel        string
	StoreFile       string
	DistributeDepth int

	vip *viper.Viper
}

func NewServerFlags() *ServerFlags {
	return &ServerFlags{
		Mode:            "stdio",
		ListenAddress:   ":8080",
		LogLevel:        "info",
		DistributeDepth: 8,
		vip:             viper.New(),
	}
}

func (f *ServerFlags) BindFlags(flags *pflag.FlagSet) {
	flags.StringVar(&f.ConfigFile, "config", f.ConfigFile, "Path to a YAML or JSON config file")
	flags.StringVar(&f.Mode, "mode", f.Mode, "Transport: stdio or http")
	flags.StringVar(&f.ListenAddress, "listen", f.ListenAddress, "Listen address in http mode")
	flags.StringVar(&f.LogLevel, "log-level", f.LogLevel, "Log level: debug, info, warn or error")
	flags.StringVar(&f.StoreFile, "store", f.StoreFile, "YAML or JSON file mapping store indices to values")
	flags.IntVar(&f.DistributeDepth, "distribute-depth", f.DistributeDepth, "Largest depth a distribute call may request")
}

// ToOptions resolves flags, config file and SYMCALC_* environment
// variables, in that order of precedence.
func (f *ServerFlags) ToOptions(flags *pflag.FlagSet) (*ServerOptions, error) {
	v := f.vip
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		return nil, errors.Wrap(err, "binding flags")
	}
	if cfg := v.GetString("config"); cfg != "" {
		v.SetConfigFile(cfg)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "reading config %s", cfg)
		}
	}

	o := &ServerOptions{
		Mode:            v.GetString("mode"),
		ListenAddress:   v.GetString("listen"),
		DistributeDepth: v.GetInt("distribute-depth"),
	}
	switch o.Mode {
	case "stdio", "http":
	default:
		return nil, errors.Errorf("unsupported mode: %s", o.Mode)
	}
	if o.DistributeDepth < 1 {
		return nil, errors.Errorf("distribute-depth must be positive, got %d", o.DistributeDepth)
	}

	level, err := log.ParseLevel(v.GetString("log-level"))
	if err != nil {
		return nil, errors.Wrap(err, "log-level")
	}
	o.LogLevel = level

	if path := v.GetString("store"); path != "" {
		store, err := symcalc.LoadStoreFile(path)
		if err != nil {
			return nil, err
		}
		o.Store = store
		o.StoreFile = path
	}
	return o, nil
}

func NewServerCommand() *cobra.Command {
	f := NewServerFlags()
	// set by PreRunE; RunE reuses it
	var o *ServerOptions

	cmd := &cobra.Command{
		Use:   "mcp-server",
		Short: "Serve symcalc tools over MCP",
		Long: heredoc.Doc(`
			Serve the symcalc algebra tools (simplify, derivative, primitive,
			integrate, evaluate, branched and friends) to MCP clients.

			The server can run in two modes:
			- stdio: communicates via standard input/output
			- http:  serves streamable HTTP on /mcp, with /metrics and /health

			Every flag can also be set in the config file or through an
			environment variable such as SYMCALC_LISTEN or SYMCALC_LOG_LEVEL.
		`),
		Example: heredoc.Doc(`
			# Serve over stdio with stored constants
			mcp-server --store store.yaml

			# Serve over HTTP
			mcp-server --mode http --listen :9090
		`),
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if o, err = f.ToOptions(cmd.Flags()); err != nil {
				return errors.WithMessage(err, "error converting to options")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if o == nil {
				return errors.New("options were not resolved")
			}
			if err := o.Run(cmd.Context()); err != nil {
				return errors.WithMessage(err, "error running MCP server")
			}
			return nil
		},
	}
	f.BindFlags(cmd.Flags())
	return cmd
}
