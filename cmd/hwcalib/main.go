package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/golang/glog"

	"github.com/meenmo/shortrate/cmd/hwcalib/internal/report"
	"github.com/meenmo/shortrate/cmd/hwcalib/internal/request"
	"github.com/meenmo/shortrate/cmd/hwcalib/internal/scenario"
	"github.com/meenmo/shortrate/config"
)

func main() {
	// glog registers -v, -logtostderr etc. on the default set.
	flag.Parse()
	code := run(flag.Args(), os.Stdin, os.Stdout, os.Stderr)
	glog.Flush()
	os.Exit(code)
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return 2
	}

	cmd := strings.ToLower(strings.TrimSpace(args[0]))
	switch cmd {
	case "flat", "ois", "calibrate":
	case "-h", "--help", "help":
		usage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", args[0])
		usage(stderr)
		return 2
	}

	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "YAML config path (optional)")
	inputPath := fs.String("input", "", "JSON input path for calibrate (optional; if set, ignores stdin)")
	asJSON := fs.Bool("json", false, "Print the scenario report as JSON")
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}

	cfg, err := config.Load(strings.TrimSpace(*configPath))
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	ctx := context.Background()
	if cmd == "calibrate" {
		return request.Run(ctx, cfg, strings.TrimSpace(*inputPath), stdin, stdout)
	}

	src, err := scenario.ParseSource(cmd)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	rep, err := scenario.Run(ctx, src, cfg)
	if err != nil {
		glog.Errorf("scenario %s failed: %v", src, err)
		fmt.Fprintln(stderr, err)
		return 1
	}
	if *asJSON {
		out, _ := json.MarshalIndent(rep, "", "  ")
		fmt.Fprintln(stdout, string(out))
		return 0
	}
	report.Print(stdout, rep)
	return 0
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: hwcalib [glog flags] <command> [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  flat       2002 Euribor scenario on the flat 4.875825% curve")
	fmt.Fprintln(w, "  ois        2002 Euribor scenario on the bootstrapped Eonia curve")
	fmt.Fprintln(w, "  calibrate  Read JSON curve and swaption quotes, output calibrated parameters as JSON")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fmt.Fprintln(w, "  -config path  YAML overrides; HWCALIB_* environment variables override the file")
	fmt.Fprintln(w, "  -input path   calibrate input (default stdin)")
	fmt.Fprintln(w, "  -json         scenario report as JSON")
}
