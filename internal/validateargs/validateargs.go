package validateargs

import (
	"fmt"
	"strings"
)

// sensitiveArgs carry credentials and end up in process listings when passed
// on the command line
var sensitiveArgs = []string{"sentry-dsn"}

// flagName returns the name of the flag arg sets, or "" when arg is a value
func flagName(arg string) string {
	if !strings.HasPrefix(arg, "-") {
		return ""
	}

	name := strings.TrimLeft(arg, "-")
	if i := strings.IndexByte(name, '='); i >= 0 {
		name = name[:i]
	}

	return name
}

// Sensitive checks if credentials have been passed as command line arguments
func Sensitive(args []string) error {
	var found []string

	for _, arg := range args {
		name := flagName(arg)
		for _, sensitive := range sensitiveArgs {
			if name == sensitive {
				found = append(found, "-"+sensitive)
			}
		}
	}

	if len(found) > 0 {
		return fmt.Errorf("%s should not be passed as command line arguments, use the environment or -config file instead", strings.Join(found, ", "))
	}

	return nil
}
