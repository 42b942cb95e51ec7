// Package compile implements the command line operations: it reads Sass/SCSS
// sources, drives the render pipeline and writes the resulting CSS with an
// optional source map to the requested destination.
package compile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/Tol1/sass-loader/config"
	"github.com/Tol1/sass-loader/loader"
	"github.com/Tol1/sass-loader/resolve"
	"github.com/Tol1/sass-loader/sass"
	"github.com/Tol1/sass-loader/state"
	"github.com/Tol1/sass-loader/utils/debug"
)

func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("compile")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	src, err = filepath.Abs(src)
	if err != nil {
		return err
	}

	dst := cmd.Args().Get(1)
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	style := env.Cfg.Loader.OutputStyle
	if cmd.IsSet("style") {
		style = cmd.String("style")
	}
	if len(style) > 0 {
		if _, err := config.ParseOutputStyle(style); err != nil {
			log.Warn("Unknown output style requested, letting the pipeline decide", zap.Error(err))
			style = ""
		}
	}

	env.NoDirs, env.Overwrite = cmd.Bool("nodirs"), cmd.Bool("overwrite")

	opts := loader.Options{
		IndentedSyntax: strings.EqualFold(filepath.Ext(src), ".sass"),
		OutputStyle:    style,
		SourceMap:      env.Cfg.Loader.SourceMap || cmd.Bool("source-map"),
		Root:           env.Cfg.Loader.Root,
		Precision:      env.Cfg.Loader.Precision,
	}

	includes := append([]string{}, env.Cfg.Loader.IncludePaths...)
	includes = append(includes, cmd.StringSlice("include-path")...)

	log.Info("Compilation starting", zap.String("source", src), zap.String("destination", dst))
	defer func(start time.Time) {
		log.Info("Compilation completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return process(ctx, src, dst, includes, opts, log)
}

// process handles a single stylesheet independently of the CLI framework.
func process(ctx context.Context, src, dst string, includes []string, opts loader.Options, log *zap.Logger) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)

	fi, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("input source was not found (%s): %w", src, err)
	}
	if !fi.Mode().IsRegular() {
		return fmt.Errorf("unexpected path mode for (%s)", src)
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("unable to read source (%s): %w", src, err)
	}

	var store *resolve.DepStore
	if db := env.Cfg.Loader.DependenciesDB; len(db) > 0 {
		if store, err = resolve.OpenDepStore(db); err != nil {
			return fmt.Errorf("unable to open dependencies database: %w", err)
		}
		defer store.Close()
		// recompilation starts the dependency list from scratch
		if err := store.Forget(src); err != nil {
			log.Warn("Unable to reset recorded dependencies", zap.String("source", src), zap.Error(err))
		}
	}

	resolver := resolve.NewFSResolver(src, includes, store, log)
	ldr := loader.New(sass.NewEngine(log), resolver, log)
	ldr.Minimize = env.Cfg.Loader.Minimize

	outputName := buildOutputPath(relativeSource(src), dst, effectiveStyle(opts.OutputStyle, ldr.Minimize), env)
	ldr.OutputDir = filepath.Dir(outputName)

	res, err := ldr.RenderSync(string(data), src, opts)
	if err != nil {
		return fmt.Errorf("unable to compile (%s): %w", src, err)
	}

	// Check if output file already exists
	if _, err := os.Stat(outputName); err == nil {
		if !env.Overwrite {
			return fmt.Errorf("output file already exists: %s", outputName)
		}
		log.Warn("Overwriting existing file", zap.String("file", outputName))
		if err = os.Remove(outputName); err != nil {
			return err
		}
	} else if !os.IsNotExist(err) {
		return err
	} else if err := os.MkdirAll(filepath.Dir(outputName), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}

	if err := os.WriteFile(outputName, res.Content, 0644); err != nil {
		return fmt.Errorf("unable to write output (%s): %w", outputName, err)
	}
	if len(res.SourceMap) > 0 {
		if err := os.WriteFile(outputName+".map", res.SourceMap, 0644); err != nil {
			return fmt.Errorf("unable to write source map (%s): %w", outputName+".map", err)
		}
	}

	if deps := resolver.Dependencies(); len(deps) > 0 {
		log.Debug("Imports resolved", zap.String("tree", depTree(src, deps)))
	}

	// Store compilation result for debugging
	if env.Rpt != nil {
		env.Rpt.Store("result-"+filepath.Base(outputName), outputName)
	}

	log.Info("Output written", zap.String("file", outputName))
	return nil
}

// Deps prints dependencies recorded for a source file by previous
// compilations.
func Deps(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("deps")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	src, err := filepath.Abs(src)
	if err != nil {
		return err
	}
	if cmd.Args().Len() > 1 {
		log.Warn("Malformed command line, too many sources", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	db := env.Cfg.Loader.DependenciesDB
	if len(db) == 0 {
		return errors.New("no dependencies database has been configured")
	}

	store, err := resolve.OpenDepStore(db)
	if err != nil {
		return fmt.Errorf("unable to open dependencies database: %w", err)
	}
	defer store.Close()

	deps, err := store.List(src)
	if err != nil {
		return fmt.Errorf("unable to read recorded dependencies: %w", err)
	}
	if len(deps) == 0 {
		log.Info("No recorded dependencies", zap.String("source", src))
		return nil
	}

	_, err = os.Stdout.WriteString(depTree(src, deps))
	return err
}

// relativeSource keeps "preserve the input directory layout" sensible for
// absolute paths: when the source sits under the working directory its
// relative path is used, otherwise only the base name.
func relativeSource(src string) string {
	if wd, err := os.Getwd(); err == nil {
		if rel, err := filepath.Rel(wd, src); err == nil && !strings.HasPrefix(rel, "..") {
			return rel
		}
	}
	return filepath.Base(src)
}

func effectiveStyle(style string, minimize bool) string {
	if len(style) > 0 {
		return style
	}
	if minimize {
		return config.OutputStyleCompressed.String()
	}
	return config.OutputStyleNested.String()
}

func depTree(src string, deps []string) string {
	tw := debug.NewTreeWriter()
	tw.Line(0, "%s", src)
	for _, d := range deps {
		tw.Line(1, "%s", d)
	}
	return tw.String()
}
