package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	cli "github.com/urfave/cli"
)

type capturingLogger struct {
	lines []string
}

func (l *capturingLogger) Printf(format string, v ...any) {
	l.lines = append(l.lines, format)
}

func buildTestApp(logger Logger) *cli.App {
	app := cli.NewApp()
	app.Flags = []cli.Flag{
		cli.IntFlag{Name: "bit-mode"},
		cli.StringFlag{Name: "config"},
		cli.BoolFlag{Name: "dump-symbols"},
		cli.StringFlag{Name: "symbols-file"},
		cli.StringFlag{Name: "format"},
	}
	app.Action = run(logger)
	return app
}

func TestRunAssemblesBinaryOutput(t *testing.T) {
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "boot.asm")
	outputPath := filepath.Join(dir, "boot.bin")
	configPath := filepath.Join(dir, "config.toml")

	src := "@SetOrigin(0x7C00)\nax = 0x1234\nhalt:\njmp halt\n@PadBytes(505)\n@DoubleWords(0xAA55)\n"
	if err := os.WriteFile(inputPath, []byte(src), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	app := buildTestApp(defaultLogger())
	args := []string{"asmx86", "--config", configPath, "--bit-mode", "16", inputPath, outputPath}
	if err := app.Run(args); err != nil {
		t.Fatalf("app.Run: %v", err)
	}

	out, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(out) != 512 {
		t.Fatalf("got %d bytes, want 512", len(out))
	}
	want := []byte{0xB8, 0x34, 0x12, 0xEB, 0xFE}
	if !bytes.Equal(out[:5], want) {
		t.Fatalf("got % X, want % X...", out[:5], want)
	}
}

func TestRunRejectsRelativePaths(t *testing.T) {
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "boot.asm")
	if err := os.WriteFile(inputPath, []byte("al = 1\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	relInput, err := filepath.Rel(cwd, inputPath)
	if err != nil {
		t.Fatalf("Rel: %v", err)
	}

	app := buildTestApp(defaultLogger())
	args := []string{"asmx86", "--config", filepath.Join(dir, "config.toml"), relInput, filepath.Join(dir, "boot.bin")}
	if err := app.Run(args); err == nil {
		t.Fatal("expected an error for a relative input path")
	}

	args = []string{"asmx86", "--config", filepath.Join(dir, "config.toml"), inputPath, "boot.bin"}
	if err := app.Run(args); err == nil {
		t.Fatal("expected an error for a relative output path")
	}
}

func TestRunReportsAssemblyErrors(t *testing.T) {
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "bad.asm")
	outputPath := filepath.Join(dir, "bad.bin")
	if err := os.WriteFile(inputPath, []byte("zz = 1\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	app := buildTestApp(defaultLogger())
	err := app.Run([]string{"asmx86", "--config", filepath.Join(dir, "config.toml"), inputPath, outputPath})
	if err == nil {
		t.Fatal("expected an error for an unknown register")
	}
}

func TestRunHexFormatWritesTextualDump(t *testing.T) {
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "small.asm")
	outputPath := filepath.Join(dir, "small.hex")
	if err := os.WriteFile(inputPath, []byte("al = 1\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	app := buildTestApp(defaultLogger())
	if err := app.Run([]string{"asmx86", "--config", filepath.Join(dir, "config.toml"), "--format", "hex", inputPath, outputPath}); err != nil {
		t.Fatalf("app.Run: %v", err)
	}

	out, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.Contains(out, []byte("b0 01")) {
		t.Fatalf("hex dump missing expected bytes: %s", out)
	}
}

func TestRunWarnsAboutUnusedLabel(t *testing.T) {
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "unused.asm")
	outputPath := filepath.Join(dir, "unused.bin")
	if err := os.WriteFile(inputPath, []byte("stray:\nal = 1\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	logger := &capturingLogger{}
	app := buildTestApp(logger)
	if err := app.Run([]string{"asmx86", "--config", filepath.Join(dir, "config.toml"), inputPath, outputPath}); err != nil {
		t.Fatalf("app.Run: %v", err)
	}
	if len(logger.lines) == 0 {
		t.Fatal("expected an unused-label warning")
	}
}
