// cmd/pagina/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"pagina/internal/builder"
	"pagina/internal/config"
	"pagina/internal/pages"
	"pagina/internal/scaffold"
	"pagina/internal/server"
)

var version = "dev"

const (
	templateDir = "templates"
	outputDir   = "public"
	configFile  = "site.yaml"
)

// env is shared by all commands, it is filled in before any of them runs.
type env struct {
	site       config.SiteConfig
	configFile string
	log        *zap.Logger
	started    time.Time
}

type envKey struct{}

func envFromContext(ctx context.Context) *env {
	if e, ok := ctx.Value(envKey{}).(*env); ok {
		return e
	}
	return &env{}
}

func initializeAppContext(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.NArg() == 0 {
		return ctx, nil
	}
	e := envFromContext(ctx)
	e.started = time.Now()
	e.configFile = cmd.String("config")

	site, err := config.LoadSiteConfig(e.configFile)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist) && !cmd.IsSet("config"):
		// no site here (yet), "new site" does not need one
		site = config.Default()
		e.configFile = ""
	default:
		return ctx, fmt.Errorf("unable to prepare configuration: %w", err)
	}
	e.site = site

	if e.log, err = site.Logging.Prepare(cmd.Bool("debug")); err != nil {
		return ctx, fmt.Errorf("unable to prepare logs: %w", err)
	}
	e.log.Debug("Program started", zap.Strings("args", os.Args), zap.String("ver", version), zap.String("runtime", runtime.Version()))
	if e.configFile == "" {
		e.log.Debug("Using defaults (no configuration file)")
	}
	return ctx, nil
}

func destroyAppContext(ctx context.Context, _ *cli.Command) error {
	e := envFromContext(ctx)
	if e.log != nil {
		e.log.Debug("Program ended", zap.Duration("elapsed", time.Since(e.started)))
		// syncing a console is not supported everywhere, nothing to do about it
		_ = e.log.Sync()
	}
	return nil
}

var errWasHandled bool

func exitErrHandler(ctx context.Context, _ *cli.Command, err error) {
	if e := envFromContext(ctx); e.log != nil {
		e.log.Error("Program ended with error", zap.Error(err))
		errWasHandled = true
	}
}

func runBuild(ctx context.Context, cmd *cli.Command) error {
	e := envFromContext(ctx)
	tmpl, err := builder.LoadTemplates(cmd.String("templates"), e.site.Template)
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}
	opts := builder.BuildOptions{
		CleanDestination: true,
		Unsafe:           cmd.Bool("unsafe"),
	}
	count, err := builder.BuildSite(cmd.String("output"), e.site, tmpl, opts, e.log)
	if err != nil {
		return fmt.Errorf("site generation failed: %w", err)
	}
	e.log.Info("Site generated", zap.Int("pages", count), zap.String("output", cmd.String("output")))
	return nil
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	e := envFromContext(ctx)
	return server.Run(ctx, e.site, server.Options{
		Port:        int(cmd.Int("port")),
		ConfigFile:  e.configFile,
		TemplateDir: cmd.String("templates"),
		Build:       builder.BuildOptions{Unsafe: cmd.Bool("unsafe")},
	}, e.log)
}

func runExport(ctx context.Context, cmd *cli.Command) error {
	e := envFromContext(ctx)
	list, err := builder.LoadPages(e.site, e.log)
	if err != nil {
		return err
	}
	out := pages.ExportWithTags(list)

	dest := cmd.String("output")
	if dest == "" {
		dest = cmd.Args().First()
	}
	if dest == "" {
		_, err = fmt.Fprint(os.Stdout, out)
		return err
	}
	if err := os.WriteFile(dest, []byte(out), 0644); err != nil {
		return fmt.Errorf("unable to write export: %w", err)
	}
	e.log.Info("Exported pages with tags", zap.Int("pages", len(list)), zap.String("file", dest))
	return nil
}

func runNewSite(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 1 {
		return fmt.Errorf("expected exactly one site NAME, got %d arguments", cmd.NArg())
	}
	_, err := scaffold.CreateNewSite(".", cmd.Args().First(), envFromContext(ctx).log)
	return err
}

func newTemplatesFlag() cli.Flag {
	return &cli.StringFlag{Name: "templates", Value: templateDir, Usage: "load templates from `DIR`"}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:            "pagina",
		Usage:           "renders one long text as a paged, illustrated story",
		Version:         version + " (" + runtime.Version() + ")",
		HideHelpCommand: true,
		Before:          initializeAppContext,
		After:           destroyAppContext,
		ExitErrHandler:  exitErrHandler,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Value: configFile, Usage: "load site configuration from `FILE` (YAML)"},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "verbose logging"},
			&cli.BoolFlag{Name: "unsafe", Usage: "do not sanitize page HTML"},
		},
		Commands: []*cli.Command{
			{
				Name:   "build",
				Usage:  "Generates the static site, one HTML file per page",
				Action: runBuild,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Value: outputDir, Usage: "write the site to `DIR`"},
					newTemplatesFlag(),
				},
			},
			{
				Name:   "serve",
				Usage:  "Runs a local dev server with live reload",
				Action: runServe,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 1313, Usage: "listen on `PORT`"},
					newTemplatesFlag(),
				},
			},
			{
				Name:      "export",
				Usage:     "Writes the pages back out with [page=N] tags added, to stdout unless a file is given",
				ArgsUsage: "[DESTINATION]",
				Action:    runExport,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "write the export to `FILE`"},
				},
			},
			{
				Name:  "new",
				Usage: "Creates new things",
				Commands: []*cli.Command{
					{
						Name:      "site",
						Usage:     "Scaffolds a new site",
						ArgsUsage: "NAME",
						Action:    runNewSite,
					},
				},
			},
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.WithValue(context.Background(), envKey{}, &env{}), os.Interrupt, syscall.SIGTERM)

	err := newApp().Run(ctx, os.Args)
	stop()
	if err != nil {
		if !errWasHandled {
			fmt.Fprintf(os.Stderr, "Program ended with error: %v\n", err)
		}
		os.Exit(1)
	}
}
