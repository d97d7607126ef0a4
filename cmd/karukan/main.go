// Command karukan is the karukan input method's maintenance and smoke-test
// CLI. It builds the system dictionary from Sudachi's connection-cost CSVs
// and drives the engine from a terminal for local testing — the production
// entry point for desktop input frameworks is the cgo shim under
// cmd/karukan-host, built with -buildmode=c-shared.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/vrclipboard-ime/karukan/internal/config"
	"github.com/vrclipboard-ime/karukan/internal/dict"
	"github.com/vrclipboard-ime/karukan/internal/hostabi"
	"github.com/vrclipboard-ime/karukan/internal/ime"
	"github.com/vrclipboard-ime/karukan/internal/lmfacade"
	"github.com/vrclipboard-ime/karukan/internal/lmfacade/mock"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 1
	}

	switch args[0] {
	case "build-dict":
		return runBuildDict(args[1:])
	case "try":
		return runTry(args[1:])
	case "init-config":
		return runInitConfig(args[1:])
	case "help", "-h", "--help":
		printUsage()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "karukan: unknown command %q\n", args[0])
		printUsage()
		return 1
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `usage: karukan <command> [flags]

commands:
  build-dict   build a system dictionary from Sudachi CSVs
  try          drive the engine interactively from the terminal
  init-config  write a default config.toml to the standard config path
  help         show this message`)
}

// ── build-dict ──────────────────────────────────────────────────────────────

func runBuildDict(args []string) int {
	fs := flag.NewFlagSet("build-dict", flag.ExitOnError)
	out := fs.String("out", "dict.bin", "output dictionary path")
	var csvPaths stringList
	fs.Var(&csvPaths, "sudachi-csv", "Sudachi connection-cost CSV (repeatable)")
	fs.Parse(args)

	if len(csvPaths) == 0 {
		fmt.Fprintln(os.Stderr, "karukan: build-dict requires at least one -sudachi-csv")
		return 1
	}

	costs, err := dict.ParseSudachiCSVs(csvPaths)
	if err != nil {
		fmt.Fprintf(os.Stderr, "karukan: %v\n", err)
		return 1
	}

	d := dict.BuildFromSudachiCostMap(costs)
	if err := d.Save(*out); err != nil {
		fmt.Fprintf(os.Stderr, "karukan: save %q: %v\n", *out, err)
		return 1
	}

	fmt.Printf("karukan: wrote %s from %d CSV file(s)\n", *out, len(csvPaths))
	return 0
}

type stringList []string

func (s *stringList) String() string     { return strings.Join(*s, ",") }
func (s *stringList) Set(v string) error { *s = append(*s, v); return nil }

// ── init-config ─────────────────────────────────────────────────────────────

func runInitConfig(args []string) int {
	fs := flag.NewFlagSet("init-config", flag.ExitOnError)
	fs.Parse(args)

	path, err := config.ConfigFile()
	if err != nil {
		fmt.Fprintf(os.Stderr, "karukan: %v\n", err)
		return 1
	}
	if err := config.Save(config.Default(), path); err != nil {
		fmt.Fprintf(os.Stderr, "karukan: write %q: %v\n", path, err)
		return 1
	}
	fmt.Printf("karukan: wrote default configuration to %s\n", path)
	return 0
}

// ── try ──────────────────────────────────────────────────────────────────────

// runTry drives one Handle from stdin, letting a developer type romaji,
// press space/enter/escape/digits, and see the preedit/candidate/commit
// caches update exactly as a real host would read them — without needing a
// cgo host framework.
func runTry(args []string) int {
	fs := flag.NewFlagSet("try", flag.ExitOnError)
	fs.Parse(args)

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	h := hostabi.NewHandle(demoProviderFactory)
	if err := h.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "karukan: init: %v\n", err)
		return 1
	}
	defer h.SaveLearning()

	fmt.Println("karukan try — type romaji, Enter to send it as a keystroke sequence, 'q' alone to quit")
	fmt.Println("(this demo uses the bundled echo model, so real kanji conversion requires a real GGUF backend)")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		if line == "q" {
			break
		}
		feedLine(h, line)
		printCaches(h)
	}
	return 0
}

// demoProviderFactory backs the try command's model slot with the facade's
// echo test double — this CLI ships no real GGUF inference, so typed
// romaji converts only via dictionary/hiragana fallback, not real kanji.
func demoProviderFactory(variantID string, _ uint32) (lmfacade.Provider, error) {
	return &mock.Provider{Name: variantID}, nil
}

func feedLine(h *hostabi.Handle, line string) {
	for _, r := range line {
		h.ProcessKey(runeToKeyEvent(r))
	}
}

// runeToKeyEvent maps a typed rune to the keysym/char an X11-style host
// would report; only the ASCII range used by romaji input and the
// Space/Enter/Escape/Backspace control keys are handled.
func runeToKeyEvent(r rune) ime.KeyEvent {
	switch r {
	case ' ':
		return ime.PressKey(ime.KeysymSpace)
	case '\r', '\n':
		return ime.PressKey(ime.KeysymReturn)
	case '\x1b':
		return ime.PressKey(ime.KeysymEscape)
	case '\b', 127:
		return ime.PressKey(ime.KeysymBackspace)
	default:
		return ime.PressKey(ime.Keysym(r))
	}
}

func printCaches(h *hostabi.Handle) {
	if h.Preedit.Dirty && h.Preedit.Text != "" {
		fmt.Printf("  preedit: %s (caret byte %d)\n", h.Preedit.Text, h.Preedit.CaretBytes)
	}
	if h.Candidates.Dirty && !h.Candidates.Hide && h.Candidates.Count > 0 {
		fmt.Printf("  candidates: %s\n", strings.Join(h.Candidates.Texts, " / "))
	}
	if h.Aux.Dirty && h.Aux.Text != "" {
		fmt.Printf("  aux: %s\n", h.Aux.Text)
	}
	if h.Commit.Dirty && h.Commit.Text != "" {
		fmt.Printf("  commit: %s\n", h.Commit.Text)
	}
}
