package main

import (
	"bufio"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hupe1980/logpool"
	"github.com/hupe1980/logpool/config"
	"github.com/hupe1980/logpool/metrics/prometheus"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "logpool",
		Short:   "Stage log lines locally and ship them to an object pool",
		Version: version,
	}
	rootCmd.PersistentFlags().StringP("config", "c", "logpool.yaml", "Config file (.yaml, .toml or .json)")

	rootCmd.AddCommand(
		shipCmd(),
		restoreCmd(),
		checkCmd(),
	)
	return rootCmd
}

func shipCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ship",
		Short: "Read lines from stdin and ship them to the pool",
		RunE:  runShip,
	}
	cmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")
	return cmd
}

func restoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore",
		Short: "Upload staging files left behind by a previous run",
		RunE:  runRestore,
	}
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <key>",
		Short: "Report whether an object exists in the pool",
		Args:  cobra.ExactArgs(1),
		RunE:  runCheck,
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func runShip(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := cfg.NewStore(ctx)
	if err != nil {
		return fmt.Errorf("create store: %w", err)
	}

	opts := cfg.Options()
	log := cfg.Logger()

	if metricsAddr != "" {
		collector, err := prometheus.New(nil)
		if err != nil {
			return fmt.Errorf("register metrics: %w", err)
		}
		opts = append(opts, logpool.WithMetricsCollector(collector))

		mux := http.NewServeMux()
		mux.Handle("/metrics", prometheus.Handler())
		srv := &http.Server{Addr: metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server failed", "error", err)
			}
		}()
		defer srv.Close()
	}

	eng, err := logpool.Open(ctx, store, opts...)
	if err != nil {
		return err
	}

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(cmd.InOrStdin())
		sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- sc.Err()
	}()

	var shipErr error
loop:
	for {
		select {
		case <-ctx.Done():
			log.Info("shutting down")
			break loop
		case line, ok := <-lines:
			if !ok {
				break loop
			}
			if err := eng.Receive(ctx, line); err != nil {
				shipErr = err
				break loop
			}
		}
	}

	closeErr := eng.Close()
	select {
	case err := <-scanErr:
		shipErr = errors.Join(shipErr, err)
	default:
	}

	stats := eng.Stats()
	log.Info("done",
		"rotations", stats.Rotations,
		"uploaded", stats.Uploaded,
		"failed", stats.FailedUploads,
	)
	return errors.Join(shipErr, closeErr)
}

func runRestore(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	store, err := cfg.NewStore(ctx)
	if err != nil {
		return fmt.Errorf("create store: %w", err)
	}

	opts := append(cfg.Options(), logpool.WithRestore(false))
	eng, err := logpool.Open(ctx, store, opts...)
	if err != nil {
		return err
	}

	n, restoreErr := eng.Restore(ctx)
	closeErr := eng.Close()

	fmt.Fprintf(cmd.OutOrStdout(), "restored %d file(s)\n", n)
	return errors.Join(restoreErr, closeErr)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	store, err := cfg.NewStore(ctx)
	if err != nil {
		return fmt.Errorf("create store: %w", err)
	}

	ok, err := store.Exists(ctx, args[0])
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s: not found in pool %s", args[0], cfg.Pool)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: present in pool %s\n", args[0], cfg.Pool)
	return nil
}
