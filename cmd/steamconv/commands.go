package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/corrreia/steamconv/internal/community"
	"github.com/corrreia/steamconv/internal/config"
	"github.com/corrreia/steamconv/internal/converter"
	"github.com/corrreia/steamconv/internal/modules"
	apihttp "github.com/corrreia/steamconv/internal/modules/http"
	"github.com/corrreia/steamconv/internal/shared"
)

// ConvertCmd converts one or more identifiers.
type ConvertCmd struct {
	IDs         []string      `arg:"" name:"id" help:"Identifiers to convert."`
	Offline     bool          `help:"Do not contact steamcommunity.com; vanity URLs fail."`
	JSON        bool          `name:"json" short:"j" help:"Print results as JSON."`
	Timeout     time.Duration `default:"10s" help:"Deadline for all profile lookups."`
	Concurrency int           `default:"4" help:"Inputs converted at once."`
}

// Run converts every id and reports a failure if any of them failed.
func (c *ConvertCmd) Run(ctx *kong.Context) error {
	var resolver converter.Resolver
	if !c.Offline {
		cfg := community.DefaultConfig()
		if _, err := config.Load(cfg, "community.json", "community.yaml"); err != nil {
			return err
		}
		client := community.NewClient(*cfg, nil)
		defer client.CloseIdleConnections()
		resolver = client
	}
	svc := converter.New(resolver, converter.WithConcurrency(c.Concurrency))

	runCtx, cancel := context.WithTimeout(context.Background(), c.Timeout)
	defer cancel()
	results := svc.ConvertAll(runCtx, c.IDs)

	var err error
	if c.JSON {
		err = writeJSON(ctx.Stdout, results)
	} else {
		err = writeResults(ctx.Stdout, results)
	}
	if err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		if !r.OK() {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d inputs failed to convert", failed, len(results))
	}
	return nil
}

// DetectCmd classifies identifiers without converting them.
type DetectCmd struct {
	IDs []string `arg:"" name:"id" help:"Identifiers to classify."`
}

// Run prints one line per id.
func (d *DetectCmd) Run(ctx *kong.Context) error {
	return writeKinds(ctx.Stdout, converter.New(nil), d.IDs)
}

// ServeCmd runs the HTTP API until interrupted.
type ServeCmd struct {
	Config  string `short:"c" type:"existingfile" help:"HTTP config file (JSON or YAML)."`
	Watch   bool   `help:"Reload request limits when the config file changes."`
	Offline bool   `help:"Do not contact steamcommunity.com."`
}

// Validate rejects flag combinations kong cannot express.
func (s *ServeCmd) Validate() error {
	if s.Watch && s.Config == "" {
		return errors.New("--watch needs --config")
	}
	return nil
}

// Run registers the server modules, starts them and blocks until a signal
// arrives or the server stops on its own.
func (s *ServeCmd) Run(g *Globals) error {
	var resolver converter.Resolver
	if !s.Offline {
		cm := community.NewModule(nil)
		modules.Register(cm)
		resolver = cm
	}

	api := apihttp.New(converter.New(resolver))
	if s.Config != "" {
		if err := api.LoadConfigFile(s.Config); err != nil {
			return fmt.Errorf("load %s: %w", s.Config, err)
		}
	}
	modules.Register(api)

	if err := modules.Init(); err != nil {
		modules.Shutdown()
		return err
	}
	defer modules.Shutdown()

	if !api.IsRunning() {
		return errors.New("HTTP server is disabled in config")
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if s.Watch {
		w, err := config.NewWatcher(s.Config, func(path string) {
			if err := api.Reload(path); err != nil {
				shared.LogError("Serve", "Reload failed: %v", err)
			}
		})
		if err != nil {
			return err
		}
		if err := w.Start(sigCtx); err != nil {
			w.Stop()
			return err
		}
		defer w.Stop()
	}

	shared.LogInfo("Serve", "Serving on %s (offline=%v, debug=%v)", api.GetAddress(), s.Offline, g.Debug)
	select {
	case <-sigCtx.Done():
		shared.LogInfo("Serve", "Shutting down")
	case <-api.Done():
		return errors.New("HTTP server stopped unexpectedly")
	}
	return nil
}

// VersionCmd prints the build version.
type VersionCmd struct{}

// Run prints the version.
func (VersionCmd) Run(ctx *kong.Context) error {
	_, err := fmt.Fprintf(ctx.Stdout, "steamconv %s\n", version)
	return err
}
