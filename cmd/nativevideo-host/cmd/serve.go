package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/go-drift/nativevideo/cmd/nativevideo-host/internal/host"
	"github.com/go-drift/nativevideo/pkg/config"
	"github.com/go-drift/nativevideo/pkg/logging"
	"github.com/go-drift/nativevideo/pkg/platform"
	"github.com/go-drift/nativevideo/pkg/plugin"
	"github.com/go-drift/nativevideo/pkg/simulator"
	"github.com/go-drift/nativevideo/pkg/texture"
)

type serveOptions struct {
	configPath   string
	addr         string
	debug        bool
	nativeLoop   bool
	watchConfig  bool
	frameEveryMs int
}

func init() {
	opts := &serveOptions{}
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the plugin channels over HTTP",
		Long: `Serve starts the plugin with a simulated media engine.

Endpoints:
  POST /channels/<channel>/<method>   invoke a command (JSON body = arguments)
  GET  /events/<channel>              server-sent event stream
  GET  /healthz

Sources of the form sim://clip?duration=ms&width=&height=&buffer=ms shape the
simulated media; sim://fail-setup and sim://fail-playback inject failures.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	f := serveCmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "", "path to nativevideo.yaml (default: ./nativevideo.yaml if present)")
	f.StringVar(&opts.addr, "addr", "", "listen address (overrides host.addr)")
	f.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	f.BoolVar(&opts.nativeLoop, "native-loop", false, "let the simulated engine loop by itself")
	f.BoolVar(&opts.watchConfig, "watch", true, "reload the config file when it changes")
	f.IntVar(&opts.frameEveryMs, "frame-interval", 40, "simulated engine tick in milliseconds")
	rootCmd.AddCommand(serveCmd)
}

func loadConfig(opts *serveOptions) (*config.Config, error) {
	if opts.configPath != "" {
		return config.Load(opts.configPath)
	}
	return config.Resolve(".")
}

func runServe(ctx context.Context, opts *serveOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if opts.addr != "" {
		cfg.Host.Addr = opts.addr
	}
	if opts.debug {
		cfg.Log.Level = "debug"
	}
	logging.Setup(logging.Options{Level: cfg.Log.Level, JSON: cfg.Log.JSON})
	log := logging.For("serve")

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	loop := platform.NewLooper()
	defer loop.Quit()
	platform.DispatchTo(loop)

	bus := host.NewBus()
	platform.SetHostBridge(host.NewBridge(bus))

	p := plugin.New(cfg.PluginConfig(), plugin.Deps{
		Factory: &simulator.Factory{
			Scheduler:     loop,
			FrameInterval: time.Duration(opts.frameEveryMs) * time.Millisecond,
			NativeLooping: opts.nativeLoop,
		},
		Textures:  texture.NewMemoryRegistry(func(fn func()) { platform.Dispatch(fn) }),
		Scheduler: loop,
	})
	loop.Sync(p.Attach)
	defer loop.Sync(p.Detach)

	srv := host.NewServer(cfg, loop, bus)

	if opts.watchConfig && opts.configPath != "" {
		go func() {
			err := config.Watch(ctx, opts.configPath, func(next *config.Config) {
				srv.SetConfig(next)
				logging.SetLevel(next.Log.Level)
				loop.Post(func() { p.SetOptions(next.PlayerOptions()) })
			})
			if err != nil {
				log.WithError(err).Warn("config watch stopped")
			}
		}()
	}

	httpSrv := &http.Server{
		Addr:              cfg.Host.Addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		// Event streams end with ctx instead of holding up Shutdown.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}
	errc := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.Host.Addr).Info("listening")
		errc <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	return httpSrv.Shutdown(shutdownCtx)
}
