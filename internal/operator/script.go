package operator

import (
	"context"
	"fmt"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

// Scripted operators are Go source files interpreted with yaegi. A script
// defines
//
//	func Run(args []string) (string, error)
//
// and may import only the packages in allowedPackages. The file greet.go
// registers the operator ^greet.

var allowedPackages = map[string]bool{
	"strings":         true,
	"strconv":         true,
	"fmt":             true,
	"math":            true,
	"regexp":          true,
	"encoding/json":   true,
	"encoding/base64": true,
	"time":            true,
	"sort":            true,
	"bytes":           true,
	"path":            true,
	"path/filepath":   true,
	// os, os/exec, net, net/http, syscall and unsafe stay blocked.
}

// LoadScripts registers every *.go file in dir and returns how many were
// loaded.
func (r *Registry) LoadScripts(dir string) (int, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.go"))
	if err != nil {
		return 0, fmt.Errorf("failed to list scripts in %s: %w", dir, err)
	}
	for _, path := range paths {
		code, err := os.ReadFile(path)
		if err != nil {
			return 0, fmt.Errorf("failed to read script %s: %w", path, err)
		}
		name := "^" + strings.TrimSuffix(filepath.Base(path), ".go")
		if err := r.LoadScript(name, string(code)); err != nil {
			return 0, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return len(paths), nil
}

// LoadScript interprets code and registers its Run function as name.
func (r *Registry) LoadScript(name, code string) error {
	code = wrapCode(code)
	if err := validateImports(code); err != nil {
		return fmt.Errorf("invalid imports: %w", err)
	}

	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return fmt.Errorf("failed to load stdlib: %w", err)
	}
	if _, err := i.Eval(code); err != nil {
		return fmt.Errorf("script evaluation failed: %w", err)
	}
	v, err := i.Eval("main.Run")
	if err != nil {
		return fmt.Errorf("Run function not found: %w", err)
	}
	run, ok := v.Interface().(func([]string) (string, error))
	if !ok {
		return fmt.Errorf("Run has incorrect signature (expected: func([]string) (string, error))")
	}
	return r.Register(name, scripted(run))
}

// scripted runs an interpreted function until it returns or ctx is done.
// The interpreter cannot be interrupted, so a timed out call keeps running
// in the background until it returns.
func scripted(run func([]string) (string, error)) Func {
	return func(ctx context.Context, args []string) (string, error) {
		resultChan := make(chan string, 1)
		errChan := make(chan error, 1)

		go func() {
			out, err := run(slices.Clone(args))
			if err != nil {
				errChan <- err
				return
			}
			resultChan <- out
		}()

		select {
		case out := <-resultChan:
			return out, nil
		case err := <-errChan:
			return "", err
		case <-ctx.Done():
			return "", fmt.Errorf("script timed out: %w", ctx.Err())
		}
	}
}

func validateImports(code string) error {
	f, err := parser.ParseFile(token.NewFileSet(), "script.go", code, parser.ImportsOnly)
	if err != nil {
		return err
	}
	var forbidden []string
	for _, imp := range f.Imports {
		pkg, err := strconv.Unquote(imp.Path.Value)
		if err != nil {
			return err
		}
		if !allowedPackages[pkg] {
			forbidden = append(forbidden, pkg)
		}
	}
	if len(forbidden) > 0 {
		return fmt.Errorf("forbidden imports detected: %v (allowed: %v)", forbidden, allowedList())
	}
	return nil
}

func wrapCode(code string) string {
	if strings.Contains(code, "package main") {
		return code
	}
	return "package main\n\n" + code
}

func allowedList() []string {
	pkgs := make([]string, 0, len(allowedPackages))
	for pkg := range allowedPackages {
		pkgs = append(pkgs, pkg)
	}
	slices.Sort(pkgs)
	return pkgs
}
