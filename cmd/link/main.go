// Command link decodes a set of WebAssembly binary modules, feeds them
// through the linker package's resolution machinery, and reports the
// outcome: the resolved dependency order, any diagnostic the link failed
// with, or a per-module summary on success.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/wasm-linker/linker"
	"github.com/wippyai/wasm-linker/wasm"
)

func main() {
	var (
		modulesFlag = flag.String("modules", "", "Modules to link: name=path.wasm,name2=path2.wasm")
		verbose     = flag.Bool("v", false, "Verbose logging")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *modulesFlag == "" {
		fmt.Fprintln(os.Stderr, "Usage: link -modules name=file.wasm,name2=file2.wasm [-i] [-v]")
		os.Exit(1)
	}

	if *verbose {
		lg, _ := zap.NewDevelopment()
		linker.SetLogger(lg)
	}

	ctx := linker.NewContext()
	l := linker.New(ctx, linker.DefaultOptions())

	loaded, err := loadAll(ctx, *modulesFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	for _, lm := range loaded {
		declare(l, lm)
	}
	for _, lm := range loaded {
		if err := populateImports(l, lm); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	if *interactive && !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "stdout is not a terminal, ignoring -i")
		*interactive = false
	}

	if *interactive {
		p := tea.NewProgram(newModel(l, loaded), tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	linkErr := l.TryLink()
	printResult(l, loaded, linkErr)
	if linkErr != nil {
		os.Exit(1)
	}
}

func loadAll(ctx *linker.Context, spec string) ([]*loadedModule, error) {
	var loaded []*loadedModule
	for _, entry := range strings.Split(spec, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, path, ok := strings.Cut(entry, "=")
		if !ok {
			name, path = entry, entry
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		raw, err := wasm.ParseModule(data)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}

		mod := linker.NewModule(name)
		ctx.AddModule(mod)
		loaded = append(loaded, &loadedModule{name: name, raw: raw, mod: mod})
	}
	if len(loaded) == 0 {
		return nil, fmt.Errorf("no modules specified")
	}
	return loaded, nil
}

func printResult(l *linker.Linker, loaded []*loadedModule, linkErr error) {
	if linkErr != nil {
		fmt.Fprintf(os.Stderr, "Link failed: %v\n", linkErr)
		return
	}
	fmt.Println("Link succeeded.")
	for _, lm := range loaded {
		fmt.Println("  " + describeModule(lm))
	}

	fmt.Println("\nResolution order:")
	for i, rt := range l.Trace() {
		fmt.Printf("  %2d. %-60s %s\n", i+1, rt.Sym, rt.Duration)
	}
}
