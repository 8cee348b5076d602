package httptransport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptrace"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"gitlab.com/servicemarket/marketplace-api/internal/logging"
)

// ErrTTFBTimeout is returned when the upstream did not start responding in time
var ErrTTFBTimeout = errors.New("time to first byte exceeded")

type meteredRoundTripper struct {
	next        http.RoundTripper
	name        string
	tracer      *prometheus.HistogramVec
	durations   *prometheus.HistogramVec
	counter     *prometheus.CounterVec
	ttfbTimeout time.Duration
}

// NewMeteredRoundTripper will create a custom http.RoundTripper that can be used with an http.Client.
// The RoundTripper will report metrics based on the collectors passed, labelled with name.
func NewMeteredRoundTripper(next http.RoundTripper, name string, tracerVec, durationsVec *prometheus.
	HistogramVec, counterVec *prometheus.CounterVec, ttfbTimeout time.Duration) http.RoundTripper {
	if next == nil {
		next = DefaultTransport
	}

	return &meteredRoundTripper{
		next:        next,
		name:        name,
		tracer:      tracerVec,
		durations:   durationsVec,
		counter:     counterVec,
		ttfbTimeout: ttfbTimeout,
	}
}

// RoundTrip reports metrics for the round trip and cancels it when no response
// arrives within the TTFB timeout
func (mrt *meteredRoundTripper) RoundTrip(r *http.Request) (*http.Response, error) {
	start := time.Now()

	ctx := r.Context()
	if mrt.tracer != nil {
		ctx = httptrace.WithClientTrace(ctx, mrt.newTracer(start))
	}

	ctx, cancel := context.WithCancel(ctx)

	var timer *time.Timer
	if mrt.ttfbTimeout > 0 {
		timer = time.AfterFunc(mrt.ttfbTimeout, cancel)
	}

	r = r.WithContext(ctx)

	resp, err := mrt.next.RoundTrip(r)
	expired := timer != nil && !timer.Stop()

	if err != nil {
		cancel()
		mrt.counter.WithLabelValues(mrt.name, "error").Inc()

		if expired {
			return nil, fmt.Errorf("%w after %s: %v", ErrTTFBTimeout, mrt.ttfbTimeout, err)
		}

		return nil, err
	}

	mrt.logResponse(r, resp)

	statusCode := strconv.Itoa(resp.StatusCode)
	mrt.durations.WithLabelValues(mrt.name, statusCode).Observe(time.Since(start).Seconds())
	mrt.counter.WithLabelValues(mrt.name, statusCode).Inc()

	return resp, nil
}

func (mrt *meteredRoundTripper) logResponse(req *http.Request, resp *http.Response) {
	if log.GetLevel() == log.TraceLevel {
		l := log.WithFields(log.Fields{
			"client_name":     mrt.name,
			"req_url":         logging.CleanURL(req.URL.String()),
			"res_status_code": resp.StatusCode,
		})

		for header, value := range resp.Header {
			l = l.WithField(strings.ToLower(header), strings.Join(value, ";"))
		}

		l.Traceln("response")
	}
}
