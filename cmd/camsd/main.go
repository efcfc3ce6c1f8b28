package main

import (
	"context"
	"fmt"
	"io"
	"os"

	cmdutil "github.com/mjgale/cams/cmd"
	"github.com/mjgale/cams/internal"
	"github.com/mjgale/cams/internal/daemon"
	"github.com/mjgale/cams/internal/inmem"
	"github.com/mjgale/cams/internal/logr"
	"github.com/spf13/cobra"
)

const (
	DefaultAddress  = ":8080"
	DefaultDatabase = "postgres:///cams?host=/var/run/postgresql"
)

func main() {
	// Configure ^C to terminate program
	ctx, cancel := context.WithCancel(context.Background())
	cmdutil.CatchCtrlC(cancel)

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		cmdutil.PrintError(err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	cmd := &cobra.Command{
		Use:           "camsd",
		Short:         "cams daemon",
		Long:          "camsd is the customer account management service daemon.",
		SilenceUsage:  true,
		SilenceErrors: true,
		// Define run func in order to enable cobra's default help functionality
		Run: func(cmd *cobra.Command, args []string) {},
	}
	cmd.SetOut(out)

	var help, version bool

	cfg := daemon.NewConfig()

	cmd.Flags().StringVar(&cfg.Address, "address", DefaultAddress, "Listening address")
	cmd.Flags().StringVar(&cfg.Database, "database", DefaultDatabase, "Postgres connection string")

	cmd.Flags().StringVar(&cfg.Blob.Bucket, "bucket", "", "S3 bucket for customer images. Required unless --dev-mode is set.")
	cmd.Flags().StringVar(&cfg.Blob.Region, "s3-region", "us-east-1", "AWS region of the image bucket")
	cmd.Flags().StringVar(&cfg.Blob.Endpoint, "s3-endpoint", "", "Custom S3 endpoint, e.g. a local MinIO server")
	cmd.Flags().BoolVar(&cfg.DevMode, "dev-mode", false, "Enable developer mode: images are kept in memory rather than S3.")

	cmd.Flags().IntVar(&cfg.CacheConfig.Size, "cache-size", 0, "Maximum cache size in MB. 0 means unlimited size.")
	cmd.Flags().DurationVar(&cfg.CacheConfig.TTL, "cache-expiry", inmem.DefaultCacheTTL, "Cache entry TTL.")

	cmd.Flags().BoolVar(&cfg.SSL, "ssl", false, "Toggle SSL")
	cmd.Flags().StringVar(&cfg.CertFile, "cert-file", "", "Path to SSL certificate (required if enabling SSL)")
	cmd.Flags().StringVar(&cfg.KeyFile, "key-file", "", "Path to SSL key (required if enabling SSL)")
	cmd.Flags().BoolVar(&cfg.EnableRequestLogging, "log-http-requests", false, "Log HTTP requests")

	cmd.Flags().BoolVar(&version, "version", false, "Print version of camsd")
	cmd.Flags().BoolVarP(&help, "help", "h", false, "Print usage information")

	logr.LoadConfigFromFlags(cmd.Flags(), &cfg.LogConfig)

	if err := cmdutil.SetFlagsFromEnvVariables(cmd.Flags()); err != nil {
		return err
	}

	if err := cmd.ParseFlags(args); err != nil {
		return err
	}

	if help {
		return cmd.Help()
	}

	if version {
		fmt.Fprintln(cmd.OutOrStdout(), internal.Version)
		return nil
	}

	logger, err := logr.New(&cfg.LogConfig)
	if err != nil {
		return err
	}

	d, err := daemon.New(ctx, logger, cfg)
	if err != nil {
		return err
	}

	// block until ^C received
	return d.Start(ctx, make(chan struct{}))
}
