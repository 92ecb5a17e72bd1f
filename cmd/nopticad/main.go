// Command nopticad is the heterodyne interferometry pipeline's
// entrypoint. Flag handling is grounded on the teacher's
// cmd/direwolf/main.go: pflag for option parsing, a pflag.Usage
// override for the help banner, exit codes distinguishing config
// errors from runtime I/O errors.
package main

import (
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"noptica/internal/config"
	"noptica/internal/diag"
	"noptica/internal/pipeline"
	"noptica/internal/report"
	"noptica/internal/source"
)

const (
	exitOK          = 0
	exitConfigError = 1
	exitSourceError = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		calibrate  = pflag.BoolP("calibrate", "c", false, "Calibrate scan displacement.")
		configFile = pflag.String("config", "wavemeter.yaml", "Configuration file.")
		simpleDMI  = pflag.Bool("simple-dmi", false, "Run the plain displacement-measuring-interferometer mode.")
		quiet      = pflag.BoolP("quiet", "q", false, "Suppress position/wavelength output; diagnostics only.")
	)

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "nopticad - heterodyne laser-interferometry signal processor.\n\n")
		fmt.Fprintf(os.Stderr, "Usage: nopticad [options]\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitConfigError
	}

	logger := charmlog.Default()
	if cfg.Debug {
		logger.SetLevel(charmlog.DebugLevel)
	}
	diagnostics := diag.Sink(diag.NewLogger(logger))
	if cfg.DiagnosticsLog != "" {
		csvSink, err := diag.NewCSVSink(cfg.DiagnosticsLog, cfg.TimestampFormat)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return exitConfigError
		}
		defer csvSink.Close()
		diagnostics = multiSink{logger: diagnostics, csv: csvSink}
	}

	src, err := newSource(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitSourceError
	}
	defer src.Close()

	var out report.Sink = report.NewWriter(os.Stdout)
	if *quiet {
		out = report.NewWriter(discardWriter{})
	}

	drv := pipeline.New(cfg, src, out, diagnostics)

	switch {
	case *calibrate:
		err = drv.Calibrate()
	case *simpleDMI:
		err = drv.SimpleDMI()
	default:
		err = drv.Wavemeter()
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitSourceError
	}
	return exitOK
}

// newSource builds the configured Sample Source: the default spawned
// logic-analyzer command, or a direct GPIO line reader when
// source_kind: gpio is selected.
func newSource(cfg *config.Config) (source.Source, error) {
	if cfg.SourceKind == config.SourceGPIO {
		return source.NewGPIOSource(cfg.GPIOChip, cfg.GPIOOffsets)
	}
	return source.NewCommandSource(cfg.SampleCommand)
}

// multiSink fans a diagnostic out to both the structured logger and the
// optional CSV log.
type multiSink struct {
	logger diag.Sink
	csv    diag.Sink
}

func (m multiSink) Report(kind, detail string) {
	m.logger.Report(kind, detail)
	m.csv.Report(kind, detail)
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
