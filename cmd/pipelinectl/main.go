package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/funcinfra/pipelinectl/internal/cmd"
	"github.com/funcinfra/pipelinectl/internal/cmd/configure"
	"github.com/funcinfra/pipelinectl/internal/cmd/deploy"
	"github.com/funcinfra/pipelinectl/internal/cmd/queue"
	"github.com/funcinfra/pipelinectl/internal/cmd/run"
	"github.com/funcinfra/pipelinectl/internal/cmd/upload"
	"github.com/funcinfra/pipelinectl/internal/version"
)

var (
	cmdUse   = "pipelinectl [OPTIONS] COMMAND [ARG...]"
	cmdShort = "pipelinectl"
	cmdLong  = `Invokes Azure DevOps pipelines for Azure Functions and publishes their results to blob storage.`
)

// logFile is closed on exit.
var logFile io.WriteCloser

func main() {
	root := &cobra.Command{
		Use:              cmdUse,
		Short:            cmdShort,
		Long:             cmdLong,
		SilenceUsage:     true,
		SilenceErrors:    true,
		TraverseChildren: true,
		Version:          fmt.Sprintf("%s\n(build %s)", version.Version, version.GitCommit),
	}

	root.SetVersionTemplate("pipelinectl version {{.Version}}\n")
	root.Flags().BoolP("version", "v", false, "print version")

	verbosity := root.PersistentFlags().Bool("verbose", false, "turn on verbose logging")
	noColor := root.PersistentFlags().Bool("no-color", false, "disable colorized output")
	logFilePath := root.PersistentFlags().String("log-file", "", "additionally write logs to this file, rotated at 10MB")

	root.PersistentPreRunE = func(_ *cobra.Command, _ []string) error {
		return setupLogging(*verbosity, *noColor, *logFilePath)
	}

	root.AddCommand(
		run.Command(),
		upload.Command(),
		queue.Command(),
		deploy.Command(),
		configure.Command(),
	)

	c, err := root.ExecuteContextC(newContext())
	if logFile != nil {
		_ = logFile.Close()
	}
	if err != nil {
		log.Err(err).Msgf("failed to execute %s command", cmd.FullName(c))
		os.Exit(1)
	}
}

func setupLogging(verbose bool, noColor bool, logFilePath string) error {
	color.NoColor = noColor
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	zerolog.DurationFieldInteger = true
	timeFormat := "15:04:05"
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		zerolog.TimeFieldFormat = time.RFC3339Nano
		timeFormat = "15:04:05.000"
	}

	zerolog.TimestampFunc = func() time.Time {
		return time.Now().In(time.Local)
	}

	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: timeFormat, NoColor: noColor}
	if logFilePath != "" {
		if err := os.MkdirAll(filepath.Dir(logFilePath), 0o750); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		logFile = &lumberjack.Logger{
			Filename:   logFilePath,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		out = zerolog.MultiLevelWriter(out, logFile)
	}

	log.Logger = log.Output(out)
	return nil
}

// newContext returns a new context that is canceled when a SIGINT is received.
func newContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt)

	go func() {
		for range signals {
			if ctx.Err() != nil {
				os.Exit(1)
			}

			println("\nWaiting for any in-progress actions to stop... (press Ctrl-c again to exit without waiting)\n")
			cancel()
		}
	}()

	return ctx
}
