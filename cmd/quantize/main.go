package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/jo-hoe/goquantize/internal/backend/filterstructure"
	"github.com/jo-hoe/goquantize/internal/core"
)

type options struct {
	filter      string
	source      string
	destination string
	acceptance  string
	workers     int
	configPath  string
	logLevel    string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := pflag.NewFlagSet("quantize", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVarP(&opts.filter, "filter", "f", "", "filter to apply: rubik, black_white or gray_scale")
	fs.StringVarP(&opts.source, "source", "s", "", "image file or directory of images")
	fs.StringVarP(&opts.destination, "dest", "d", "", "output file or directory (default: next to the source)")
	fs.StringVarP(&opts.acceptance, "acceptance", "a", "", "black_white threshold in percent, 0-200 (default 75)")
	fs.IntVarP(&opts.workers, "workers", "w", 0, "batch worker count (default: number of CPUs)")
	fs.StringVarP(&opts.configPath, "config", "c", os.Getenv("CONFIG_PATH"), "YAML config file")
	fs.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	// positional fallback: quantize <filter> <source> [dest] [acceptance]
	rest := fs.Args()
	for _, p := range []*string{&opts.filter, &opts.source, &opts.destination, &opts.acceptance} {
		if len(rest) == 0 {
			break
		}
		if *p == "" {
			*p = rest[0]
			rest = rest[1:]
		}
	}
	if opts.filter == "" || opts.source == "" {
		fs.Usage()
		return options{}, errors.New("--filter and --source are required")
	}
	return opts, nil
}

func loadConfig(opts options) (*core.ServiceConfig, error) {
	config := core.DefaultConfig()
	if opts.configPath != "" {
		loaded, err := core.LoadConfigOrDefault(opts.configPath)
		if err != nil {
			return nil, err
		}
		config = loaded
	}
	if opts.workers > 0 {
		config.Workers = opts.workers
	}
	if opts.logLevel != "" {
		config.LogLevel = opts.logLevel
	}
	return config, config.Validate()
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	config, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	if err := core.SetupLogging(stderr, config); err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	selector, err := filterstructure.ParseSelector(opts.filter)
	if err != nil {
		slog.Error("invalid filter", "filter", opts.filter, "error", err)
		return 2
	}
	transformArgs, err := filterstructure.ParseArgs([]string{opts.acceptance})
	if err != nil {
		slog.Error("invalid arguments", "error", err)
		return 2
	}

	coreService, err := core.NewCoreService(config)
	if err != nil {
		slog.Error("failed to create core service", "error", err)
		return 1
	}
	defer func() {
		if err := coreService.Close(); err != nil {
			slog.Error("core service close error", "error", err)
		}
	}()

	info, err := os.Stat(opts.source)
	if err != nil {
		slog.Error("cannot read source", "source", opts.source, "error", err)
		return 1
	}

	if !info.IsDir() {
		output, err := coreService.ProcessFile(opts.source, selector, opts.destination, transformArgs)
		if err != nil {
			slog.Error("failed to process image", "source", opts.source, "error", err)
			return 1
		}
		fmt.Fprintln(stdout, output)
		return 0
	}

	report, err := coreService.RunBatch(selector, opts.source, opts.destination, transformArgs)
	if err != nil {
		slog.Error("batch run failed", "source", opts.source, "error", err)
		return 1
	}
	for _, res := range report.Results {
		if res.OK() {
			fmt.Fprintln(stdout, res.Output)
		}
	}
	slog.Info("batch run finished",
		"run_id", report.RunID,
		"succeeded", report.Succeeded,
		"failed", report.Failed,
		"elapsed", report.Finished.Sub(report.Started))
	if report.Failed > 0 {
		return 1
	}
	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
