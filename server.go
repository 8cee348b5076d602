package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/hashicorp/go-multierror"
	proxyproto "github.com/pires/go-proxyproto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"gitlab.com/servicemarket/marketplace-api/internal/netutil"
	"gitlab.com/servicemarket/marketplace-api/metrics"
)

type listenerType string

const (
	listenerHTTP    listenerType = "http"
	listenerProxyv2 listenerType = "proxyv2"
	listenerMetrics listenerType = "metrics"
)

type listener struct {
	net.Listener
	typ listenerType
}

// listen opens every configured socket up front so that a bad address fails
// startup before anything is served
func (a *theApp) listen() ([]listener, error) {
	var limiter *netutil.Limiter
	if a.config.General.MaxConns > 0 {
		limiter = netutil.NewLimiter(
			a.config.General.MaxConns,
			metrics.LimitListenerMaxConns,
			metrics.LimitListenerConcurrentConns,
			metrics.LimitListenerWaitingConns,
		)
	}

	var listeners []listener

	open := func(addr string, typ listenerType) error {
		l, err := net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", addr, err)
		}

		log.WithFields(log.Fields{
			"listener": addr,
			"type":     typ,
		}).Debug("Set up listener")

		if typ != listenerMetrics {
			l = netutil.SharedLimitListener(l, limiter, a.config.Server.ListenKeepAlive)
		}

		if typ == listenerProxyv2 {
			l = &proxyproto.Listener{
				Listener: l,
				Policy: func(upstream net.Addr) (proxyproto.Policy, error) {
					return proxyproto.REQUIRE, nil
				},
			}
		}

		listeners = append(listeners, listener{Listener: l, typ: typ})
		return nil
	}

	groups := map[listenerType][]string{
		listenerHTTP:    a.config.Listeners.HTTP,
		listenerProxyv2: a.config.Listeners.Proxyv2,
	}
	if a.config.General.MetricsAddress != "" {
		groups[listenerMetrics] = []string{a.config.General.MetricsAddress}
	}

	for _, typ := range []listenerType{listenerHTTP, listenerProxyv2, listenerMetrics} {
		for _, addr := range groups[typ] {
			if err := open(addr, typ); err != nil {
				closeAll(listeners)
				return nil, err
			}
		}
	}

	return listeners, nil
}

func closeAll(listeners []listener) {
	for _, l := range listeners {
		l.Close()
	}
}

func (a *theApp) newServer(handler http.Handler) *http.Server {
	if a.config.General.HTTP2 {
		handler = h2c.NewHandler(handler, &http2.Server{})
	}

	return &http.Server{
		Handler:           handler,
		ReadTimeout:       a.config.Server.ReadTimeout,
		ReadHeaderTimeout: a.config.Server.ReadHeaderTimeout,
		WriteTimeout:      a.config.Server.WriteTimeout,
	}
}

// serve runs until ctx is cancelled or a listener fails, then shuts every
// server down within the configured shutdown timeout
func (a *theApp) serve(ctx context.Context, listeners []listener) error {
	handler, err := a.Handler()
	if err != nil {
		closeAll(listeners)
		return err
	}

	apiServer := a.newServer(handler)
	metricsServer := &http.Server{
		Handler:           promhttp.Handler(),
		ReadHeaderTimeout: a.config.Server.ReadHeaderTimeout,
	}

	eg, ctx := errgroup.WithContext(ctx)

	for _, l := range listeners {
		l := l
		server := apiServer
		if l.typ == listenerMetrics {
			server = metricsServer
		}

		eg.Go(func() error {
			log.WithFields(log.Fields{
				"listener": l.Addr().String(),
				"type":     l.typ,
			}).Info("Serving requests")

			if err := server.Serve(l); !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serving %s listener %s: %w", l.typ, l.Addr(), err)
			}

			return nil
		})
	}

	eg.Go(func() error {
		<-ctx.Done()

		return shutdown(a.config.Server.ShutdownTimeout, apiServer, metricsServer)
	})

	return eg.Wait()
}

func shutdown(timeout time.Duration, servers ...*http.Server) error {
	log.WithField("timeout", timeout).Info("Shutting down servers")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var result *multierror.Error
	for _, s := range servers {
		if err := s.Shutdown(ctx); err != nil {
			result = multierror.Append(result, fmt.Errorf("server shutdown: %w", err))
		}
	}

	return result.ErrorOrNil()
}
