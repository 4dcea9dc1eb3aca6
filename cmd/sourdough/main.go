// Command sourdough compiles and runs a single source file, or reads from
// stdin when no file is given. The CLI itself is out of scope for the
// spec (spec.md §1) but every pipeline still needs a way to be driven
// (spec.md SPEC_FULL.md §A), so this mirrors the teacher's minimal
// argument-reading and panic-recovery idiom rather than inventing one.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/minond/sourdough/internal/diagnostics"
	"github.com/minond/sourdough/internal/pipeline"
	"github.com/minond/sourdough/internal/vm"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			if os.Getenv("DEBUG") == "1" {
				panic(r)
			}
			fmt.Fprintf(os.Stderr, "internal error: %v\n", r)
			os.Exit(1)
		}
	}()

	source, name, err := readInput(os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
	if source == "" {
		return
	}

	ctx, err := pipeline.Compile(source, name)
	if err != nil {
		printDiagnostic(err)
		os.Exit(1)
	}

	machine := vm.New(os.Stdout)
	if _, err := machine.Run(ctx.Program); err != nil {
		printDiagnostic(err)
		os.Exit(1)
	}
}

func printDiagnostic(err error) {
	if de, ok := err.(*diagnostics.Error); ok {
		fmt.Fprintln(os.Stderr, de.Error())
		return
	}
	fmt.Fprintln(os.Stderr, err.Error())
}

func readInput(args []string) (source, name string, err error) {
	if len(args) == 1 {
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) != 0 {
			return "", "", fmt.Errorf("usage: %s <file> or pipe source on stdin", args[0])
		}
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", "", fmt.Errorf("error reading stdin: %w", err)
		}
		return string(data), "<stdin>", nil
	}

	path := args[1]
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("error reading %s: %w", path, err)
	}
	return string(data), path, nil
}
