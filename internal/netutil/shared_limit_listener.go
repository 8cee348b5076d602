package netutil

import (
	"net"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Limiter is a pool of connection slots shared by every listener of the
// process. Use NewLimiter to create an instance.
type Limiter struct {
	sem        chan struct{}
	concurrent prometheus.Gauge
	waiting    prometheus.Gauge
}

// NewLimiter creates a Limiter holding n slots and reports its occupancy on
// the given gauges
func NewLimiter(n int, maxConns, concurrent, waiting prometheus.Gauge) *Limiter {
	maxConns.Set(float64(n))

	return &Limiter{
		sem:        make(chan struct{}, n),
		concurrent: concurrent,
		waiting:    waiting,
	}
}

// SharedLimitListener returns a Listener that accepts connections from
// listener only while limiter has a free slot. A nil limiter means no limit.
// Accepted TCP connections use keepAlive as their keep-alive period; a
// negative keepAlive disables keep-alives and zero keeps the OS default.
// Based on https://godoc.org/golang.org/x/net/netutil
func SharedLimitListener(listener net.Listener, limiter *Limiter, keepAlive time.Duration) net.Listener {
	return &sharedLimitListener{
		Listener:  listener,
		limiter:   limiter,
		keepAlive: keepAlive,
		done:      make(chan struct{}),
	}
}

type sharedLimitListener struct {
	net.Listener
	limiter   *Limiter
	keepAlive time.Duration
	closeOnce sync.Once
	done      chan struct{} // closed when Close is called
}

// acquire returns false when the listener was closed before a slot freed up
func (l *sharedLimitListener) acquire() bool {
	if l.limiter == nil {
		return true
	}

	l.limiter.waiting.Inc()
	defer l.limiter.waiting.Dec()

	select {
	case <-l.done:
		return false
	case l.limiter.sem <- struct{}{}:
		l.limiter.concurrent.Inc()
		return true
	}
}

func (l *sharedLimitListener) release() {
	if l.limiter == nil {
		return
	}

	<-l.limiter.sem
	l.limiter.concurrent.Dec()
}

func (l *sharedLimitListener) Accept() (net.Conn, error) {
	acquired := l.acquire()

	// once closed, Accept returns immediately with an error
	c, err := l.Listener.Accept()
	if err != nil {
		if acquired {
			l.release()
		}
		return nil, err
	}

	if tcpConn, ok := c.(*net.TCPConn); ok {
		l.setKeepAlive(tcpConn)
	}

	return &sharedLimitListenerConn{Conn: c, release: l.release}, nil
}

func (l *sharedLimitListener) setKeepAlive(c *net.TCPConn) {
	switch {
	case l.keepAlive < 0:
		c.SetKeepAlive(false)
	case l.keepAlive > 0:
		c.SetKeepAlive(true)
		c.SetKeepAlivePeriod(l.keepAlive)
	}
}

func (l *sharedLimitListener) Close() error {
	err := l.Listener.Close()
	l.closeOnce.Do(func() { close(l.done) })
	return err
}

type sharedLimitListenerConn struct {
	net.Conn
	releaseOnce sync.Once
	release     func()
}

func (c *sharedLimitListenerConn) Close() error {
	err := c.Conn.Close()
	c.releaseOnce.Do(c.release)
	return err
}
