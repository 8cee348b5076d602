package httptransport

import (
	"crypto/tls"
	"net/http/httptrace"
	"time"

	"gitlab.com/gitlab-org/labkit/log"
)

func (mrt *meteredRoundTripper) newTracer(start time.Time) *httptrace.ClientTrace {
	trace := &httptrace.ClientTrace{
		GetConn: func(host string) {
			mrt.httpTraceObserve("GetConn", start)

			log.WithFields(log.Fields{
				"host": host,
			}).Traceln("GetConn")
		},
		GotConn: func(connInfo httptrace.GotConnInfo) {
			mrt.httpTraceObserve("GotConn", start)

			log.WithFields(log.Fields{
				"reused":       connInfo.Reused,
				"was_idle":     connInfo.WasIdle,
				"idle_time_ms": connInfo.IdleTime.Milliseconds(),
			}).Traceln("GotConn")
		},
		GotFirstResponseByte: func() {
			mrt.httpTraceObserve("GotFirstResponseByte", start)
		},
		DNSStart: func(d httptrace.DNSStartInfo) {
			mrt.httpTraceObserve("DNSStart", start)
		},
		DNSDone: func(d httptrace.DNSDoneInfo) {
			mrt.httpTraceObserve("DNSDone", start)

			log.WithFields(log.Fields{}).WithError(d.Err).
				Traceln("DNSDone")
		},
		ConnectStart: func(net, addr string) {
			mrt.httpTraceObserve("ConnectStart", start)

			log.WithFields(log.Fields{
				"network": net,
				"address": addr,
			}).Traceln("ConnectStart")
		},
		ConnectDone: func(net string, addr string, err error) {
			mrt.httpTraceObserve("ConnectDone", start)

			l := log.WithFields(log.Fields{
				"network": net,
				"address": addr,
			})

			if err != nil {
				l.WithError(err).Error("ConnectDone")
			}

			l.Traceln("ConnectDone")
		},
		TLSHandshakeStart: func() {
			mrt.httpTraceObserve("TLSHandshakeStart", start)
		},
		TLSHandshakeDone: func(connState tls.ConnectionState, err error) {
			mrt.httpTraceObserve("TLSHandshakeDone", start)

			l := log.WithFields(log.Fields{
				"version":            connState.Version,
				"connection_resumed": connState.DidResume,
			})

			if err != nil {
				l.WithError(err).Error("TLSHandshakeDone")
			}

			l.Traceln("TLSHandshakeDone")
		},
	}

	return trace
}

func (mrt *meteredRoundTripper) httpTraceObserve(label string, start time.Time) {
	mrt.tracer.WithLabelValues(mrt.name, label).
		Observe(time.Since(start).Seconds())
}
