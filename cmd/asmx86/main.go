// Command asmx86 assembles a small x86 dialect into a flat binary image.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	cli "github.com/urfave/cli"

	"github.com/berdon/asmx86/asmconfig"
	"github.com/berdon/asmx86/asmfmt"
	"github.com/berdon/asmx86/codegen"
	"github.com/berdon/asmx86/lexer"
	"github.com/berdon/asmx86/parser"
)

func main() {
	app := cli.NewApp()
	app.Name = "asmx86"
	app.Usage = "assembles a small x86 dialect into a flat binary image"
	app.ArgsUsage = "<input> <output>"
	app.Flags = []cli.Flag{
		cli.IntFlag{
			Name:  "bit-mode",
			Usage: "processor bit mode (16, 32 or 64); overrides the config and the source default",
		},
		cli.StringFlag{
			Name:  "config",
			Usage: "path to a TOML config file; defaults to the platform config directory",
		},
		cli.BoolFlag{
			Name:  "dump-symbols",
			Usage: "print the symbol table after assembly",
		},
		cli.StringFlag{
			Name:  "symbols-file",
			Usage: "write the symbol dump here instead of stdout",
		},
		cli.StringFlag{
			Name:  "format",
			Usage: "output format: binary or hex; overrides the config",
		},
	}
	app.Action = run(defaultLogger())

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(logger Logger) cli.ActionFunc {
	return func(c *cli.Context) error {
		input := c.Args().Get(0)
		output := c.Args().Get(1)
		if input == "" || output == "" {
			return cli.NewExitError("both an input path and an output path are required", 1)
		}
		if !filepath.IsAbs(input) {
			return cli.NewExitError(fmt.Sprintf("input path %q must be absolute", input), 1)
		}
		if !filepath.IsAbs(output) {
			return cli.NewExitError(fmt.Sprintf("output path %q must be absolute", output), 1)
		}

		cfg, err := loadConfig(c.String("config"))
		if err != nil {
			return cli.NewExitError(err.Error(), 1)
		}

		src, err := os.ReadFile(input)
		if err != nil {
			return cli.NewExitError(fmt.Sprintf("reading %s: %v", input, err), 1)
		}

		bitMode := cfg.Assembly.DefaultBitMode
		if c.IsSet("bit-mode") {
			bitMode = c.Int("bit-mode")
		}

		lex := lexer.New(src, input)
		gen := codegen.New(bitMode)
		p := parser.New(lex, gen)

		if errs := p.Run(); errs.HasErrors() {
			for _, e := range errs.Errors {
				fmt.Fprintln(os.Stderr, e.Error())
			}
			return cli.NewExitError("assembly failed", 1)
		}

		reportLabelWarnings(logger, gen, cfg)

		if c.Bool("dump-symbols") || cfg.Diagnostics.DumpSymbols {
			if err := writeSymbolDump(gen, c.String("symbols-file")); err != nil {
				return cli.NewExitError(err.Error(), 1)
			}
		}

		format := cfg.Output.Format
		if c.IsSet("format") {
			format = c.String("format")
		}

		return writeOutput(gen, output, format, cfg.Output.BytesPerLine)
	}
}

func loadConfig(path string) (*asmconfig.Config, error) {
	if path == "" {
		return asmconfig.Load()
	}
	return asmconfig.LoadFrom(path)
}

func reportLabelWarnings(logger Logger, gen *codegen.Generator, cfg *asmconfig.Config) {
	if cfg.Assembly.WarnUnusedLabel {
		for _, sym := range asmfmt.UnusedLabels(gen) {
			logger.Printf("warning: label %q is never referenced", sym.Name)
		}
	}
	if cfg.Assembly.WarnUndefined {
		for _, sym := range asmfmt.UndefinedLabels(gen) {
			logger.Printf("warning: label %q is referenced but never defined", sym.Name)
		}
	}
}

func writeSymbolDump(gen *codegen.Generator, symbolsFile string) error {
	dump := asmfmt.DumpSymbols(gen)
	if symbolsFile == "" {
		fmt.Print(dump)
		return nil
	}
	return os.WriteFile(symbolsFile, []byte(dump), 0644)
}

func writeOutput(gen *codegen.Generator, output, format string, bytesPerLine int) error {
	data := gen.Bytes()

	if format == "hex" {
		opts := asmfmt.DefaultHexDumpOptions()
		if bytesPerLine > 0 {
			opts.BytesPerLine = bytesPerLine
		}
		dump := asmfmt.FormatHexDump(data, gen.AddressOrigin(), opts)
		return os.WriteFile(output, []byte(dump), 0644)
	}

	return os.WriteFile(output, data, 0644)
}
