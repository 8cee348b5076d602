package logging

import (
	"net/http"
	"net/url"

	"github.com/sirupsen/logrus"
	"gitlab.com/gitlab-org/labkit/correlation"
	"gitlab.com/gitlab-org/labkit/log"

	"gitlab.com/servicemarket/marketplace-api/internal/request"
)

// ConfigureLogging will initialize the system logger.
func ConfigureLogging(format string, verbose bool) error {
	var levelOption log.LoggerOption

	if format == "" {
		format = "json"
	}

	if verbose {
		levelOption = log.WithLogLevel("trace")
	} else {
		levelOption = log.WithLogLevel("info")
	}

	_, err := log.Initialize(
		log.WithFormatter(format),
		levelOption,
	)
	return err
}

// getAccessLogger will return the default logger, except when
// the log format is text, in which case a combined HTTP access
// logger will be configured.
func getAccessLogger(format string) (*logrus.Logger, error) {
	if format != "text" && format != "" {
		return logrus.StandardLogger(), nil
	}

	accessLogger := log.New()
	_, err := log.Initialize(
		log.WithLogger(accessLogger),  // Configure `accessLogger`
		log.WithFormatter("combined"), // Use the combined formatter
	)
	if err != nil {
		return nil, err
	}

	return accessLogger, nil
}

// BasicAccessLogger configures the HTTP access logger middleware
func BasicAccessLogger(handler http.Handler, format string) (http.Handler, error) {
	accessLogger, err := getAccessLogger(format)
	if err != nil {
		return nil, err
	}

	return log.AccessLogger(handler,
		log.WithExtraFields(getExtraLogFields),
		log.WithAccessLogger(accessLogger),
		log.WithXFFAllowed(func(sip string) bool { return false }),
	), nil
}

func getExtraLogFields(r *http.Request) log.Fields {
	fields := log.Fields{
		"correlation_id": correlation.ExtractFromContext(r.Context()),
	}

	if state := request.GetState(r); state != nil && state.Route != "" {
		fields["route"] = state.Route
	}

	return fields
}

// LogRequest will inject request method, path and matched route to the logged messages
func LogRequest(r *http.Request) *logrus.Entry {
	fields := log.Fields{
		"correlation_id": correlation.ExtractFromContext(r.Context()),
		"method":         r.Method,
		"path":           r.URL.Path,
	}

	if state := request.GetState(r); state != nil && state.Route != "" {
		fields["route"] = state.Route
	}

	return log.WithFields(fields)
}

// CleanURL removes credentials, query and fragment from a URL so it can be logged
func CleanURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	u.User = nil
	u.RawQuery = ""
	u.Fragment = ""

	return u.String()
}
