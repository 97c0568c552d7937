package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"studentdw/internal/config"
	"studentdw/internal/metrics"
	"studentdw/internal/metrics/datadog"
	"studentdw/internal/metrics/prompush"
	"studentdw/internal/pipeline"

	// register all backends with the storage factory; the config picks one.
	_ "studentdw/internal/storage/all"
)

var (
	cfgPath        string
	verbose        bool
	metricsBackend string
	pushGatewayURL string
	statsdAddr     string
)

var rootCmd = &cobra.Command{
	Use:           "studentdw",
	Short:         "Build the student academic-performance warehouse",
	Long:          `studentdw reads the student habits dataset, derives Dim_Student, Dim_Time and Fact_Academic_Performance, and replaces those tables in the configured store.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Extract, transform and load the warehouse tables",
	RunE:  run,
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the pipeline configuration and exit",
	RunE:  validate,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "pipeline config JSON path (defaults plus STUDENTDW_* env when empty)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logs")

	runCmd.Flags().StringVar(&metricsBackend, "metrics-backend", "", "metrics backend: pushgateway, datadog or none (env METRICS_BACKEND)")
	runCmd.Flags().StringVar(&pushGatewayURL, "pushgateway-url", "", "Pushgateway base URL (env PUSHGATEWAY_URL)")
	runCmd.Flags().StringVar(&statsdAddr, "statsd-addr", "", "DogStatsD address (env DD_DOGSTATSD_ADDR)")

	rootCmd.AddCommand(runCmd, validateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "studentdw: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads and lints the pipeline. Warnings are printed; errors
// fail.
func loadConfig(w io.Writer) (config.Pipeline, error) {
	p, err := config.Load(cfgPath)
	if err != nil {
		return config.Pipeline{}, err
	}
	hasError := false
	for _, iss := range config.ValidatePipeline(p) {
		fmt.Fprintf(w, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
		if iss.Severity == config.SeverityError {
			hasError = true
		}
	}
	if hasError {
		return config.Pipeline{}, fmt.Errorf("configuration is invalid: %s", describe(cfgPath))
	}
	return p, nil
}

func validate(cmd *cobra.Command, _ []string) error {
	if _, err := loadConfig(cmd.ErrOrStderr()); err != nil {
		return err
	}
	log.Printf("configuration is valid: %s", describe(cfgPath))
	return nil
}

func run(cmd *cobra.Command, _ []string) error {
	p, err := loadConfig(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	flush := setupMetrics(p.Job)
	defer flush()

	if verbose {
		log.Printf("pipeline: source=%s parser=%s storage=%s batch=%d",
			p.Source.File.Path, p.Parser.Kind, p.Storage.Kind, p.Runtime.BatchSize)
	}

	start := time.Now()
	sum, err := pipeline.Run(context.Background(), p)
	if err != nil {
		return err
	}
	if verbose {
		for _, t := range sum.Tables {
			log.Printf("table %s: rows=%d fingerprint=%016x", t.Table, t.Rows, t.Fingerprint)
		}
	}
	log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	return nil
}

// setupMetrics installs the selected backend and returns its flush func.
// Backend failures are logged and leave metrics disabled.
func setupMetrics(job string) func() {
	name := pick(metricsBackend, os.Getenv("METRICS_BACKEND"))
	if job == "" {
		job = "studentdw"
	}

	var (
		b   metrics.Backend
		err error
	)
	switch name {
	case "pushgateway":
		url := pick(pushGatewayURL, os.Getenv("PUSHGATEWAY_URL"), "http://localhost:9091")
		b, err = prompush.NewBackend(job, url)
		if err == nil {
			log.Printf("metrics: backend=pushgateway url=%s job=%s", url, job)
		}
	case "datadog":
		addr := pick(statsdAddr, os.Getenv("DD_DOGSTATSD_ADDR"), "127.0.0.1:8125")
		b, err = datadog.NewBackend(datadog.Config{
			Addr:       addr,
			Namespace:  "studentdw.",
			GlobalTags: []string{"job:" + job},
		})
		if err == nil {
			log.Printf("metrics: backend=datadog addr=%s", addr)
		}
	case "", "none":
		if verbose {
			log.Printf("metrics: disabled")
		}
		return func() {}
	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", name)
		return func() {}
	}
	if err != nil {
		log.Printf("metrics: init %s: %v; using nop", name, err)
		return func() {}
	}

	metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}
}

// pick returns the first non-empty value.
func pick(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func describe(path string) string {
	if path == "" {
		return "(defaults)"
	}
	return path
}
