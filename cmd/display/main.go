package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/vogiaan1904/repairhub-display/config"
	"github.com/vogiaan1904/repairhub-display/internal/display"
	"github.com/vogiaan1904/repairhub-display/internal/infra/redis"
	"github.com/vogiaan1904/repairhub-display/internal/service"
	"github.com/vogiaan1904/repairhub-display/internal/transport"
	"github.com/vogiaan1904/repairhub-display/pkg/contentapi"
	pkgLog "github.com/vogiaan1904/repairhub-display/pkg/logger"
)

// Kiosk binary. Connects the terminal display to the operator's session
// channel and renders ads between sessions. Customer actions come from
// stdin: confirm, password <value>, skip, sign <data>.
func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	l := pkgLog.InitializeZapLogger(pkgLog.ZapConfig{
		Level:    cfg.Log.Level,
		Mode:     cfg.Log.Mode,
		Encoding: cfg.Log.Encoding,
	})

	redisCli, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		l.Fatalf(ctx, "Failed to connect to Redis: %v", err)
	}
	defer redis.Disconnect(redisCli)

	ch := transport.NewRedisChannel(redisCli, l)
	renderer := display.NewTerminalRenderer(os.Stdout)

	rt := display.NewRuntime(ch, display.RuntimeConfig{
		LocationID:           cfg.Display.LocationID,
		ReconnectDelay:       cfg.Display.ReconnectDelay,
		CompletedDwell:       cfg.Display.CompletedDwell,
		DefaultSlideDuration: cfg.Display.DefaultSlideDuration,
	}, renderer, l)
	defer rt.Close()

	poller := service.NewContentPoller(
		contentapi.NewClient(cfg.Display.ContentAPIBaseURL),
		service.PollerConfig{
			LocationID: cfg.Display.LocationID,
			Interval:   cfg.Display.PollInterval,
		},
		l,
		rt.SetContent,
	)
	if err := poller.Start(ctx); err != nil {
		l.Fatalf(ctx, "Failed to start content poller: %v", err)
	}
	defer poller.Stop()

	rt.Start(ctx)

	go readCustomerInput(ctx, rt, l)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Info(ctx, "Display shutting down...")
	cancel()
	l.Info(ctx, "Display exited")
}

func readCustomerInput(ctx context.Context, rt *display.Runtime, l pkgLog.Logger) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		cmd, arg, _ := strings.Cut(line, " ")

		var err error
		switch cmd {
		case "confirm":
			err = rt.ConfirmData(ctx)
		case "password":
			err = rt.SubmitPassword(ctx, arg)
		case "skip":
			err = rt.SkipPassword(ctx)
		case "sign":
			err = rt.SubmitSignature(ctx, arg)
		default:
			l.Warnf(ctx, "Unknown command: %s", cmd)
			continue
		}
		if err != nil {
			l.Warnf(ctx, "Customer action %s failed: %v", cmd, err)
		}
	}
}
