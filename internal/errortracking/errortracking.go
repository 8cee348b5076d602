package errortracking

import (
	"net/http"
	"strconv"

	"gitlab.com/gitlab-org/labkit/errortracking"
)

const loggerName = "marketplace-api"

// Initialize configures Sentry reporting. It is a no-op when dsn is empty.
func Initialize(dsn, environment, version string) error {
	if dsn == "" {
		return nil
	}

	return errortracking.Initialize(
		errortracking.WithSentryDSN(dsn),
		errortracking.WithVersion(version),
		errortracking.WithLoggerName(loggerName),
		errortracking.WithSentryEnvironment(environment),
	)
}

// CaptureRequestFailure reports a failed request together with the response
// status, the request and a stack trace
func CaptureRequestFailure(err error, r *http.Request, status int, route string) {
	opts := []errortracking.CaptureOption{
		errortracking.WithContext(r.Context()),
		errortracking.WithRequest(r),
		errortracking.WithField("status", strconv.Itoa(status)),
		errortracking.WithStackTrace(),
	}

	if route != "" {
		opts = append(opts, errortracking.WithField("route", route))
	}

	errortracking.Capture(err, opts...)
}

// CaptureErrWithStackTrace reports err with a stack trace and any additional fields
func CaptureErrWithStackTrace(err error, fields map[string]string) {
	opts := []errortracking.CaptureOption{errortracking.WithStackTrace()}
	for key, value := range fields {
		opts = append(opts, errortracking.WithField(key, value))
	}

	errortracking.Capture(err, opts...)
}
