package cli

import (
	"fmt"
	"net"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	obsprom "github.com/fluxorio/ppqsort/pkg/observability/prometheus"
)

// metricsServer serves /metrics for a registry over fasthttp
type metricsServer struct {
	server   *fasthttp.Server
	listener net.Listener
	done     chan error
}

func startMetricsServer(addr string, gatherer prometheus.Gatherer) (*metricsServer, error) {
	metricsHandler := fasthttpadaptor.NewFastHTTPHandler(obsprom.Handler(gatherer))

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s := &metricsServer{
		server: &fasthttp.Server{
			Name: "ppqsort",
			Handler: func(ctx *fasthttp.RequestCtx) {
				switch string(ctx.Path()) {
				case "/metrics":
					metricsHandler(ctx)
				case "/live":
					ctx.SetContentType("text/plain")
					ctx.SetBodyString("ok")
				default:
					ctx.Error("not found", fasthttp.StatusNotFound)
				}
			},
		},
		listener: ln,
		done:     make(chan error, 1),
	}
	go func() {
		s.done <- s.server.Serve(ln)
	}()
	return s, nil
}

// Addr returns the bound address, useful with ":0"
func (s *metricsServer) Addr() string {
	return s.listener.Addr().String()
}

// Shutdown stops accepting connections and waits for Serve to return
func (s *metricsServer) Shutdown() error {
	if err := s.server.Shutdown(); err != nil {
		return err
	}
	return <-s.done
}
