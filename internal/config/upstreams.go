package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// CollectionNames lists the handler collections mounted beneath /api, in
// registration order
var CollectionNames = []string{
	"users",
	"vendors",
	"services",
	"bookings",
	"reviews",
	"admin",
	"payments",
	"uploads",
}

var (
	ErrUpstreamSyntax            = errors.New("upstream must be specified as name=url")
	ErrUpstreamUnknownCollection = errors.New("upstream names an unknown collection")
	ErrUpstreamDuplicate         = errors.New("upstream is specified more than once")
	ErrUpstreamInvalidURL        = errors.New("upstream url is invalid")
	ErrUpstreamUnsupportedScheme = errors.New("upstream scheme must be either http:// or https://")
)

func isCollection(name string) bool {
	for _, n := range CollectionNames {
		if n == name {
			return true
		}
	}

	return false
}

// parseUpstreams turns name=url pairs into upstream targets, reporting every
// malformed pair at once
func parseUpstreams(values []string) (map[string]*url.URL, error) {
	targets := make(map[string]*url.URL, len(values))

	var result *multierror.Error
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}

		name, rawURL, ok := strings.Cut(value, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			result = multierror.Append(result, fmt.Errorf("%w: %q", ErrUpstreamSyntax, value))
			continue
		}

		if !isCollection(name) {
			result = multierror.Append(result, fmt.Errorf("%w: %q", ErrUpstreamUnknownCollection, name))
			continue
		}

		if _, exists := targets[name]; exists {
			result = multierror.Append(result, fmt.Errorf("%w: %q", ErrUpstreamDuplicate, name))
			continue
		}

		u, err := url.Parse(strings.TrimSpace(rawURL))
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("%w: %s: %v", ErrUpstreamInvalidURL, name, err))
			continue
		}

		// url.Parse ensures that the Scheme attribute is always lower case.
		if u.Scheme != "http" && u.Scheme != "https" {
			result = multierror.Append(result, fmt.Errorf("%w: %s", ErrUpstreamUnsupportedScheme, name))
			continue
		}

		if u.Host == "" {
			result = multierror.Append(result, fmt.Errorf("%w: %s: missing host", ErrUpstreamInvalidURL, name))
			continue
		}

		targets[name] = u
	}

	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}

	return targets, nil
}
