package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"

	"tarz/pkg/archive"
	"tarz/pkg/codec"
	"tarz/pkg/core"
	"tarz/pkg/stats"
)

var green = color.New(color.FgGreen).SprintFunc()

func main() {
	if len(os.Args) < 3 {
		printUsage(os.Stderr)
		os.Exit(1)
	}

	var err error
	switch operation := os.Args[1]; operation {
	case "compress":
		err = handleCompress(os.Args[2:])
	case "extract":
		err = handleExtract(os.Args[2:])
	case "list":
		err = handleList(os.Args[2:])
	default:
		fmt.Fprintln(os.Stderr, "Invalid operation:", operation)
		printUsage(os.Stderr)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error:"), err)
		os.Exit(1)
	}
}

// printUsage prints the command-line usage information
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  tarz compress <input> [output] [-level none|fast|default|max|0-9] [-format gzip|lz4|zstd] [-v]")
	fmt.Fprintln(w, "  tarz extract <archive> [output-dir] [-v]")
	fmt.Fprintln(w, "  tarz list <archive>")
}

// parseArgs parses flags that may appear before, between or after the
// positional arguments and returns the positionals.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// handleCompress handles the compression operation
func handleCompress(args []string) error {
	fs := flag.NewFlagSet("compress", flag.ContinueOnError)
	levelFlag := fs.String("level", "default", "compression level: none, fast, default, max or 0-9")
	formatFlag := fs.String("format", "gzip", "compressed framing: gzip, lz4 or zstd")
	verbose := fs.Bool("v", false, "log progress to stderr")

	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if len(positional) < 1 || len(positional) > 2 {
		printUsage(os.Stderr)
		return fmt.Errorf("compress takes an input and an optional output")
	}

	level, err := codec.ParseLevel(*levelFlag)
	if err != nil {
		return err
	}
	format, err := codec.ParseFormat(*formatFlag)
	if err != nil {
		return err
	}

	output := ""
	if len(positional) == 2 {
		output = positional[1]
	}
	c := core.NewCompressor(positional[0], output,
		core.WithLevel(level),
		core.WithFormat(format),
		core.WithLogger(newLogger(*verbose)),
		core.WithProgress(*verbose))

	req := c.Request()
	fmt.Printf("Compressing %s to %s\n\n", green(req.Input), green(req.Output))
	res, err := c.Compress()
	if err != nil {
		return err
	}
	printResult(res)
	return nil
}

// handleExtract handles the extraction operation
func handleExtract(args []string) error {
	fs := flag.NewFlagSet("extract", flag.ContinueOnError)
	verbose := fs.Bool("v", false, "log progress to stderr")

	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if len(positional) < 1 || len(positional) > 2 {
		printUsage(os.Stderr)
		return fmt.Errorf("extract takes an archive and an optional output directory")
	}

	output := ""
	if len(positional) == 2 {
		output = positional[1]
	}
	e := core.NewExtractor(positional[0], output,
		core.WithLogger(newLogger(*verbose)),
		core.WithProgress(*verbose))

	req := e.Request()
	fmt.Printf("Decompressing %s to %s\n\n", green(req.Input), green(req.Output))
	res, err := e.Extract()
	if err != nil {
		return err
	}
	printResult(res)
	return nil
}

// handleList prints the members of an archive
func handleList(args []string) error {
	if len(args) != 1 {
		printUsage(os.Stderr)
		return fmt.Errorf("list takes exactly one archive")
	}

	entries, err := core.List(args[0], core.WithLogger(newLogger(false)))
	if err != nil {
		return err
	}
	for _, e := range entries {
		printEntry(e)
	}
	return nil
}

func printEntry(e archive.Entry) {
	switch e.Kind {
	case archive.KindSymlink, archive.KindHardlink:
		fmt.Printf("%s %10s  %s -> %s\n", e.Mode, "", e.Name, e.Linkname)
	case archive.KindFile:
		fmt.Printf("%s %10s  %s\n", e.Mode, stats.FormatSize(uint64(e.Size)), e.Name)
	default:
		fmt.Printf("%s %10s  %s\n", e.Mode, "", e.Name)
	}
}

func printResult(res core.Result) {
	fmt.Printf("Input size: %s\n", green(res.InputSizeFormatted()))
	fmt.Printf("Output size: %s\n", green(res.OutputSizeFormatted()))
	fmt.Printf("Compression ratio: %s\n", green(res.RatioFormatted(3)))
	if res.Warning != nil {
		fmt.Fprintln(os.Stderr, color.YellowString("Warning:"), res.Warning)
	}
}
