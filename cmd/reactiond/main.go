package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/giantswarm/microerror"
	"github.com/giantswarm/micrologger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/comalice/reactiontask"
	"github.com/comalice/reactiontask/internal/config"
	"github.com/comalice/reactiontask/internal/production"
	"github.com/comalice/reactiontask/internal/ws"
)

func main() {
	err := mainError()
	if err != nil {
		panic(fmt.Sprintf("%#v\n", err))
	}
}

func mainError() error {
	configPath := flag.String("config", "", "path to a YAML configuration file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return microerror.Mask(err)
	}

	logger, err := micrologger.New(micrologger.Config{})
	if err != nil {
		return microerror.Mask(err)
	}
	logger.Debugf(ctx, "loaded configuration %s", cfg)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	var metrics *production.Metrics
	{
		metrics, err = production.NewMetrics(production.MetricsConfig{Registerer: registry})
		if err != nil {
			return microerror.Mask(err)
		}
	}

	var broadcaster *ws.Broadcaster
	{
		broadcaster, err = ws.NewBroadcaster(ws.BroadcasterConfig{Logger: logger})
		if err != nil {
			return microerror.Mask(err)
		}
		defer broadcaster.Close()
	}

	var session *reactiontask.Session
	{
		m := cfg.Measurement
		session, err = reactiontask.New(broadcaster,
			reactiontask.WithSignalInterval(m.MinSignal, m.MaxSignal),
			reactiontask.WithResponseTimeout(m.ResponseTimeout),
			reactiontask.WithReactionFloor(m.ReactionFloor),
			reactiontask.WithLogger(logger),
			reactiontask.WithPublisher(broadcaster, metrics),
		)
		if err != nil {
			return microerror.Mask(err)
		}
		defer session.Close()
	}

	var handler http.Handler
	{
		server, err := ws.NewServer(ws.ServerConfig{
			Logger:      logger,
			Broadcaster: broadcaster,
			Controller:  session,
		})
		if err != nil {
			return microerror.Mask(err)
		}

		mux := http.NewServeMux()
		mux.Handle("/", server.Handler())
		mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		handler = mux
	}

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Debugf(ctx, "listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return microerror.Mask(err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Debugf(shutdownCtx, "shutting down")
		return microerror.Mask(httpServer.Shutdown(shutdownCtx))
	})

	return microerror.Mask(g.Wait())
}
