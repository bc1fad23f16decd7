package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/go-tangra/go-tangra-tailscale-inventory/cmd/tailscale-inventory/assets"
	"github.com/go-tangra/go-tangra-tailscale-inventory/internal/codec"
	"github.com/go-tangra/go-tangra-tailscale-inventory/internal/collector"
	"github.com/go-tangra/go-tangra-tailscale-inventory/internal/config"
	"github.com/go-tangra/go-tangra-tailscale-inventory/internal/convert"
	"github.com/go-tangra/go-tangra-tailscale-inventory/internal/inventory"
	"github.com/go-tangra/go-tangra-tailscale-inventory/internal/logging"
	"github.com/go-tangra/go-tangra-tailscale-inventory/internal/server"
)

var (
	version    = "dev"
	commitHash = "unknown"
	buildDate  = "unknown"
)

// options holds flag values shared by the commands.
type options struct {
	cfgFile    string
	list       bool
	host       string
	outputFile string
	format     string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "tailscale-inventory",
		Short: "Ansible dynamic inventory for the hosts of a tailnet",
		Long: `tailscale-inventory queries the local tailscale agent and prints an Ansible
dynamic inventory grouping hosts by online state, OS and tag.

Run without a subcommand (or with --list) to print the full inventory, or with
--host NAME to print the vars of one host.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, opts)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.cfgFile, "config", "", "config file (default: ./tailscale-inventory.yaml)")
	pf.String("tailscale-binary", "", "tailscale CLI to run (default depends on the platform)")
	pf.Duration("timeout", 0, "how long to wait for tailscale status (default 30s)")
	pf.String("log-level", "", "log level: debug, info, warn, error (default warn)")
	pf.String("log-format", "", "log format: text or json (default text)")

	rootCmd.Flags().BoolVar(&opts.list, "list", false, "print the full inventory (default)")
	rootCmd.Flags().StringVar(&opts.host, "host", "", "print the vars of a single host")
	rootCmd.Flags().StringVarP(&opts.outputFile, "output", "o", "", "write output to file instead of stdout")
	rootCmd.MarkFlagsMutuallyExclusive("list", "host")

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write a static Ansible inventory file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd, opts)
		},
	}
	exportCmd.Flags().StringVar(&opts.format, "format", "yaml", "output format: yaml or json")
	exportCmd.Flags().StringVarP(&opts.outputFile, "output", "o", "", "write output to file instead of stdout")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the inventory over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}
	serveCmd.Flags().String("listen", "", "HTTP listen address (default :9560)")
	serveCmd.Flags().String("api-secret", "", "secret required in X-API-Key (empty = no auth)")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tailscale-inventory %s (commit: %s, built: %s)\n", version, commitHash, buildDate)
		},
	}

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)

	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads the configuration, applies CLI flag overrides and builds the
// logger.
func setup(cmd *cobra.Command, opts *options) (*config.Config, *logging.Logger, error) {
	cfg, err := config.Load(opts.cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	// CLI flag overrides.
	if v, _ := cmd.Flags().GetString("tailscale-binary"); v != "" {
		cfg.TailscaleBinary = v
	}
	if cmd.Flags().Changed("timeout") {
		d, _ := cmd.Flags().GetDuration("timeout")
		if d <= 0 {
			return nil, nil, fmt.Errorf("--timeout must be positive, got %s", d)
		}
		cfg.StatusTimeout = d
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.Logging.Level = v
	}
	if v, _ := cmd.Flags().GetString("log-format"); v != "" {
		cfg.Logging.Format = v
	}

	return cfg, logging.New(cfg.Logging, version), nil
}

// buildInventory runs the whole pipeline once: query tailscale, then group.
func buildInventory(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*inventory.Inventory, error) {
	st, err := collector.Collect(ctx, collector.Options{
		Binary:  cfg.TailscaleBinary,
		Timeout: cfg.StatusTimeout,
	})
	if err != nil {
		return nil, err
	}

	inv := inventory.FromStatus(st)
	logger.Info("inventory built",
		"backend_state", st.BackendState,
		"peers", len(st.Peer),
		"groups", inv.Groups.Len(),
		"hosts", len(inv.HostVars),
	)
	return inv, nil
}

func runList(cmd *cobra.Command, opts *options) error {
	cfg, logger, err := setup(cmd, opts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	inv, err := buildInventory(ctx, cfg, logger)
	if err != nil {
		return err
	}

	var doc any = convert.ToAnsible(inv)
	if opts.host != "" {
		doc = convert.HostVars(inv, opts.host)
	}

	data, err := codec.MarshalJSON(doc)
	if err != nil {
		return fmt.Errorf("encoding inventory: %w", err)
	}
	return writeOutput(cmd, opts.outputFile, data, logger)
}

func runExport(cmd *cobra.Command, opts *options) error {
	cfg, logger, err := setup(cmd, opts)
	if err != nil {
		return err
	}

	var marshal func(any) ([]byte, error)
	switch opts.format {
	case "yaml", "yml":
		marshal = codec.MarshalYAML
	case "json":
		marshal = codec.MarshalJSON
	default:
		return fmt.Errorf("unknown export format %q (want yaml or json)", opts.format)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	inv, err := buildInventory(ctx, cfg, logger)
	if err != nil {
		return err
	}

	data, err := marshal(convert.ToStaticYAML(inv))
	if err != nil {
		return fmt.Errorf("encoding inventory: %w", err)
	}
	return writeOutput(cmd, opts.outputFile, data, logger)
}

func runServe(cmd *cobra.Command, opts *options) error {
	cfg, logger, err := setup(cmd, opts)
	if err != nil {
		return err
	}
	if v, _ := cmd.Flags().GetString("listen"); v != "" {
		cfg.Listen = v
	}
	if v, _ := cmd.Flags().GetString("api-secret"); v != "" {
		cfg.ApiSecret = v
	}

	client, err := collector.New(collector.Options{
		Binary:  cfg.TailscaleBinary,
		Timeout: cfg.StatusTimeout,
	})
	if err != nil {
		return err
	}
	logger.Info("using tailscale binary", "binary", client.Binary())

	// Shut down on SIGINT / SIGTERM.
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return server.Run(ctx, cfg, client, logger, assets.OpenApiData)
}

// writeOutput writes the fully encoded document in one go, so a failed run
// never leaves a partial inventory behind.
func writeOutput(cmd *cobra.Command, outputFile string, data []byte, logger *logging.Logger) error {
	if outputFile == "" {
		if _, err := cmd.OutOrStdout().Write(data); err != nil {
			return fmt.Errorf("write inventory: %w", err)
		}
		return nil
	}

	if err := os.WriteFile(outputFile, data, 0o644); err != nil {
		return fmt.Errorf("cannot create output file: %w", err)
	}
	logger.Info("inventory written", "path", outputFile)
	return nil
}
