package proxy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	apperrors "github.com/Shiro-Bankai7/electricians/pkg/errors"
	pkghttputil "github.com/Shiro-Bankai7/electricians/pkg/httputil"
	"github.com/Shiro-Bankai7/electricians/pkg/logger"
	"github.com/Shiro-Bankai7/electricians/pkg/middleware"
)

// statusClientClosedRequest is the nginx convention for a request the
// client abandoned before the upstream answered.
const statusClientClosedRequest = 499

// TransportConfig tunes the shared upstream transport.
type TransportConfig struct {
	DialTimeout     time.Duration
	ResponseTimeout time.Duration
	IdleTimeout     time.Duration
	MaxIdleConns    int
}

// ServiceProxy manages reverse proxies to the site's backend services.
type ServiceProxy struct {
	routes map[string]*httputil.ReverseProxy
	logger *slog.Logger
}

// NewServiceProxy creates a reverse proxy for each entry of upstreams
// (service name to base URL). All proxies share one transport.
func NewServiceProxy(upstreams map[string]string, tc TransportConfig, logger *slog.Logger) (*ServiceProxy, error) {
	sp := &ServiceProxy{
		routes: make(map[string]*httputil.ReverseProxy, len(upstreams)),
		logger: logger,
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   tc.DialTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          tc.MaxIdleConns,
		MaxIdleConnsPerHost:   tc.MaxIdleConns,
		IdleConnTimeout:       tc.IdleTimeout,
		ResponseHeaderTimeout: tc.ResponseTimeout,
	}

	for name, rawURL := range upstreams {
		target, err := url.Parse(rawURL)
		if err != nil || target.Host == "" {
			return nil, fmt.Errorf("invalid %s service URL %q", name, rawURL)
		}

		sp.routes[name] = &httputil.ReverseProxy{
			Rewrite:        rewrite(target),
			Transport:      transport,
			ModifyResponse: stripUpstreamCORS,
			ErrorHandler:   sp.errorHandler(name),
		}

		logger.Info("registered service proxy",
			slog.String("service", name),
			slog.String("target", rawURL),
		)
	}

	return sp, nil
}

// Services returns the registered service names in sorted order.
func (sp *ServiceProxy) Services() []string {
	names := make([]string, 0, len(sp.routes))
	for name := range sp.routes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Handler returns an http.Handler that proxies requests to the named backend service.
func (sp *ServiceProxy) Handler(serviceName string) http.Handler {
	proxy, ok := sp.routes[serviceName]
	if !ok {
		sp.logger.Error("no proxy registered for service", slog.String("service", serviceName))
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			pkghttputil.WriteError(w, r, apperrors.Unavailable("service not configured"), sp.logger)
		})
	}
	return proxy
}

// rewrite routes the outbound request to target, keeping the inbound path,
// and forwards the correlation ID and trace context.
func rewrite(target *url.URL) func(*httputil.ProxyRequest) {
	return func(pr *httputil.ProxyRequest) {
		pr.SetURL(target)
		pr.SetXForwarded()

		if id := logger.CorrelationIDFromContext(pr.In.Context()); id != "" {
			pr.Out.Header.Set(middleware.CorrelationHeader, id)
		}
		otel.GetTextMapPropagator().Inject(pr.In.Context(), propagation.HeaderCarrier(pr.Out.Header))
	}
}

// stripUpstreamCORS drops CORS headers set by the backend; the gateway
// answers CORS for the whole site.
func stripUpstreamCORS(resp *http.Response) error {
	for key := range resp.Header {
		if strings.HasPrefix(http.CanonicalHeaderKey(key), "Access-Control-") {
			resp.Header.Del(key)
		}
	}
	return nil
}

// errorHandler returns an error handler for the reverse proxy that writes
// (and logs) a JSON 502.
func (sp *ServiceProxy) errorHandler(serviceName string) func(http.ResponseWriter, *http.Request, error) {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		if errors.Is(err, context.Canceled) {
			w.WriteHeader(statusClientClosedRequest)
			return
		}

		pkghttputil.WriteError(w, r, apperrors.UpstreamFailed("upstream service unavailable",
			fmt.Errorf("proxy to %s: %w", serviceName, err)), sp.logger)
	}
}
