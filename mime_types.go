package main

import (
	"mime"

	"gitlab.com/gitlab-org/go-mimedb"
	"gitlab.com/gitlab-org/labkit/log"
)

// extraMIMETypes covers extensions served from the public directory that the
// system and mimedb tables disagree on or miss
var extraMIMETypes = map[string]string{
	".avif":        "image/avif",
	".webmanifest": "application/manifest+json",
	".mjs":         "text/javascript",
}

func loadMIMETypes() error {
	if err := mimedb.LoadTypes(); err != nil {
		return err
	}

	for ext, mimeType := range extraMIMETypes {
		if err := mime.AddExtensionType(ext, mimeType); err != nil {
			log.WithError(err).Errorf("failed to add extension: %q with MIME type: %q", ext, mimeType)
			return err
		}
	}

	return nil
}
