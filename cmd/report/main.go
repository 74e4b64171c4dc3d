// Command report runs one analysis from the local tables, prints it and
// optionally exports the derived series.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"MiningPulse/internal/analysis"
	"MiningPulse/internal/config"
	"MiningPulse/internal/exporter"
	"MiningPulse/internal/loader"
	"MiningPulse/internal/logger"
	"MiningPulse/internal/model"
	"MiningPulse/internal/notifier"

	"github.com/rs/zerolog"
)

type options struct {
	configPath string
	symbols    string
	window     string
	start      string
	end        string
	ma         string
	rsi        int
	period     string
	export     string
	outDir     string
}

func main() {
	var opts options
	registerFlags(flag.CommandLine, &opts)
	flag.Parse()

	if err := run(context.Background(), opts); err != nil {
		fmt.Fprintln(os.Stderr, "report:", err)
		os.Exit(1)
	}
}

func registerFlags(fs *flag.FlagSet, opts *options) {
	fs.StringVar(&opts.configPath, "config", "configs/config.yaml", "config file")
	fs.StringVar(&opts.symbols, "symbols", "", "comma-separated instrument codes; more than one (or none) runs a comparison")
	fs.StringVar(&opts.window, "window", "", "preset window (max, 10y, 5y, 3y, 1y, 6mo, 3mo, 1mo)")
	fs.StringVar(&opts.start, "start", "", "custom window start, YYYY-MM-DD")
	fs.StringVar(&opts.end, "end", "", "custom window end, YYYY-MM-DD")
	fs.StringVar(&opts.ma, "ma", "", "comma-separated moving average windows")
	fs.IntVar(&opts.rsi, "rsi", 0, "RSI period")
	fs.StringVar(&opts.period, "period", "", "change period: D, W, M or Y")
	fs.StringVar(&opts.export, "export", "", "export format: csv, json or parquet")
	fs.StringVar(&opts.outDir, "out", "exports", "export directory")
}

func run(ctx context.Context, opts options) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	logCfg := cfg.Log.Logger()
	logCfg.Output = "stderr"
	log, err := logger.New(logCfg)
	if err != nil {
		return err
	}

	req, err := cfg.AnalysisRequest()
	if err != nil {
		return err
	}
	if req, err = opts.apply(req); err != nil {
		return err
	}

	engine := analysis.NewEngine(loader.NewStore(cfg.Instruments, log), analysis.WithLogger(log))

	var saver exporter.Saver
	if opts.export != "" {
		if saver, err = exporter.NewSaver(opts.export); err != nil {
			return err
		}
	}

	if len(req.Symbols) == 1 {
		res, err := engine.Analyze(ctx, req.Symbols[0], req)
		if err != nil {
			return err
		}
		fmt.Println(notifier.PlainText(notifier.FormatInstrument(res)))
		return exportAll(saver, opts.outDir, []*analysis.InstrumentResult{res}, log)
	}

	cmp, err := engine.Compare(ctx, req)
	if err != nil {
		return err
	}
	fmt.Println(notifier.PlainText(notifier.FormatComparison(cmp)))
	for _, res := range cmp.Instruments {
		fmt.Println()
		fmt.Println(notifier.PlainText(notifier.FormatInstrument(res)))
	}
	return exportAll(saver, opts.outDir, cmp.Instruments, log)
}

// apply overlays the flags that were set onto the configured defaults.
func (o options) apply(req analysis.Request) (analysis.Request, error) {
	for _, s := range strings.Split(o.symbols, ",") {
		if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
			req.Symbols = append(req.Symbols, s)
		}
	}

	switch {
	case o.start != "" || o.end != "":
		start, err := time.Parse("2006-01-02", o.start)
		if err != nil {
			return req, fmt.Errorf("%w: start: %v", model.ErrInvalidWindow, err)
		}
		end, err := time.Parse("2006-01-02", o.end)
		if err != nil {
			return req, fmt.Errorf("%w: end: %v", model.ErrInvalidWindow, err)
		}
		req.Window = model.CustomWindow(start, end)
	case o.window != "":
		p, err := model.ParsePreset(o.window)
		if err != nil {
			return req, err
		}
		req.Window = model.PresetWindow(p)
	}

	if o.ma != "" {
		req.MAPeriods = nil
		for _, f := range strings.Split(o.ma, ",") {
			n, err := strconv.Atoi(strings.TrimSpace(f))
			if err != nil {
				return req, fmt.Errorf("ma: %w", err)
			}
			req.MAPeriods = append(req.MAPeriods, n)
		}
	}
	if o.rsi != 0 {
		req.RSIPeriod = o.rsi
	}
	if o.period != "" {
		p, err := model.ParsePeriod(o.period)
		if err != nil {
			return req, err
		}
		req.ChangePeriod = p
	}
	return req, req.Validate()
}

func exportAll(saver exporter.Saver, dir string, results []*analysis.InstrumentResult, log zerolog.Logger) error {
	if saver == nil {
		return nil
	}
	stamp := time.Now().Format("20060102")
	for _, res := range results {
		name := strings.ToLower(res.Symbol) + "_" + stamp
		path, err := exporter.SaveFile(dir, name, saver, exporter.Flatten(res))
		if err != nil {
			return err
		}
		log.Info().Str("symbol", res.Symbol).Str("path", path).Msg("exported")
	}
	return nil
}
