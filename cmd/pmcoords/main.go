package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/kwach/pmcoords/internal/logger"
	"github.com/kwach/pmcoords/pkg/config"
	"github.com/kwach/pmcoords/pkg/fetcher"
	"github.com/kwach/pmcoords/pkg/pipeline"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error: %v", err))
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(),
		"Usage: %s [flags] <pmcids_file> <output_dir>\n\n"+
			"Downloads the PMC articles listed in pmcids_file (one id per line),\n"+
			"extracts stereotactic coordinates from their tables and writes\n"+
			"per-article CSVs plus a merged all_coordinates.csv to output_dir.\n\n"+
			"Flags:\n", os.Args[0])
	flag.PrintDefaults()
}

func run() error {
	var configPath, logLevel string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.StringVar(&logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 2 {
		flag.Usage()
		return fmt.Errorf("expected 2 arguments, got %d", flag.NArg())
	}
	pmcidsFile, outputDir := flag.Arg(0), flag.Arg(1)

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintln(os.Stderr, color.RedString("config: %v", e))
		}
		return fmt.Errorf("invalid configuration")
	}

	log := logger.New(cfg.Log.Level, os.Stderr)

	pmcids, err := readPMCIDs(pmcidsFile)
	if err != nil {
		return err
	}

	f := fetcher.NewWithConfig(fetcher.Config{
		UserAgent:  cfg.HTTP.UserAgent,
		Timeout:    time.Duration(cfg.HTTP.TimeoutSec) * time.Second,
		DelayFloor: time.Duration(cfg.HTTP.DelayFloorSec * float64(time.Second)),
		DelayMean:  time.Duration(cfg.HTTP.DelayMeanSec * float64(time.Second)),
		RateLimit:  cfg.HTTP.RateLimit,
	}, log)

	bar := getProgressBar(len(pmcids), " Mining coordinates...")
	p := pipeline.New(pipeline.Config{
		ArticleURL: cfg.HTTP.ArticleURL,
		TableURL:   cfg.HTTP.TableURL,
		OutputDir:  outputDir,
		OnProgress: func(done, total, errors int) {
			bar.Set(done)
			if errors > 0 {
				bar.Describe(color.BlueString(" Mining coordinates... (%d errors)", errors))
			}
		},
	}, f, log)

	summary, err := p.Run(context.Background(), pmcids)
	bar.Finish()
	if err != nil {
		return err
	}

	color.Green("\n✓ %d coordinates from %d articles (%d ok, %d errors)\n",
		summary.Rows, summary.Articles, summary.Successes, summary.Errors)
	fmt.Println(summary.MergedFile)
	return nil
}

// readPMCIDs parses the identifier list: one positive integer per line,
// a leading "PMC" prefix tolerated, blank lines skipped. Anything else
// is a setup error that fails the whole run.
func readPMCIDs(path string) ([]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pmcids file: %w", err)
	}
	defer f.Close()

	var pmcids []int
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		text = strings.TrimPrefix(text, "PMC")
		id, err := strconv.Atoi(text)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("pmcids file line %d: %q is not a positive integer", line, scanner.Text())
		}
		pmcids = append(pmcids, id)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read pmcids file: %w", err)
	}
	return pmcids, nil
}

func getProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(color.BlueString(description)),
		progressbar.OptionSetItsString("articles"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)
}
