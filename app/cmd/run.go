// Package cmd contains commands for the application.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Semior001/zhbrief/app/extract"
	"github.com/Semior001/zhbrief/app/revisor"
	"github.com/Semior001/zhbrief/app/store"
	"github.com/Semior001/zhbrief/app/web"
	"github.com/Semior001/zhbrief/pkg/logx"
	"github.com/go-pkgz/requester"
	"golang.org/x/exp/slog"
	"golang.org/x/sync/errgroup"
)

// Run is a command to run the server.
type Run struct {
	Addr string `long:"addr" env:"ADDR" default:":8080" description:"address to listen on"`

	Fetch struct {
		Timeout time.Duration `long:"timeout" env:"TIMEOUT" default:"15s" description:"timeout for article fetches"`
	} `group:"fetch" namespace:"fetch" env-namespace:"FETCH"`

	DeepSeek struct {
		Token   string        `long:"token" env:"TOKEN" description:"DeepSeek token"`
		Timeout time.Duration `long:"timeout" env:"TIMEOUT" default:"5m" description:"timeout for DeepSeek calls"`
	} `group:"deepseek" namespace:"deepseek" env-namespace:"DEEPSEEK"`

	StorePath string `long:"store-path" env:"STORE_PATH" description:"parent dir for bolt files"`
}

// Execute runs the command.
func (r Run) Execute(_ []string) error {
	lg := slog.Default()

	fetchCl := requester.New(
		http.Client{Timeout: r.Fetch.Timeout},
		logx.LoggingRoundTripper(
			lg.With(slog.String("prefix", "fetch")),
			logx.RoundTripperOpts{Level: slog.LevelDebug},
		),
	).Client()

	deepSeekCl := requester.New(
		http.Client{Timeout: r.DeepSeek.Timeout},
		logx.LoggingRoundTripper(
			lg.With(slog.String("prefix", "deepseek")),
			logx.RoundTripperOpts{
				Level:         slog.LevelDebug,
				SecretHeaders: []string{"Authorization"},
			},
		),
	).Client()

	svc := revisor.NewService(
		lg.With(slog.String("prefix", "revisor")),
		fetchCl,
		revisor.NewDeepSeek(
			lg.With(slog.String("prefix", "deepseek")),
			deepSeekCl,
			r.DeepSeek.Token,
		),
		extract.NewService(lg.With(slog.String("prefix", "extract")), fetchCl),
	)

	s, err := store.NewBolt(r.StorePath)
	if err != nil {
		return fmt.Errorf("make store: %w", err)
	}

	defer func() {
		if err := s.Close(); err != nil {
			lg.Error("close bolt store", slog.Any("err", err))
		}
	}()

	ctrl := &web.Ctrl{
		Logger:  lg.With(slog.String("prefix", "web")),
		Service: svc,
		Store:   s,
	}
	e := ctrl.Routes()

	ctx, stop := context.WithCancel(context.Background())

	ewg, ctx := errgroup.WithContext(ctx)
	ewg.Go(func() error {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
		select {
		case sig := <-sig:
			slog.Warn("caught signal, stopping", slog.String("signal", sig.String()))
			stop()
			return ctx.Err()
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	ewg.Go(func() error {
		lg.Info("starting server", slog.String("addr", r.Addr))
		if err := e.Start(r.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("run server: %w", err)
		}
		lg.Warn("server stopped")
		return nil
	})
	ewg.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		lg.Info("shutting down server")
		if err := e.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	})

	if err := ewg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}
