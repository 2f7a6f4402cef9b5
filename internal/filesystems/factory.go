package filesystems

import (
	"fmt"
	"net/url"
	"strings"
)

// NewFileSystem returns the filesystem for a source location and the path
// inside it. Plain paths and file:// URIs map onto the local disk.
func NewFileSystem(uri string) (FileSystem, string, error) {
	if !strings.Contains(uri, "://") {
		return NewLocalFS(), uri, nil
	}

	parsedURL, err := url.Parse(uri)
	if err != nil {
		return nil, "", fmt.Errorf("invalid URI %s: %w", uri, err)
	}

	switch parsedURL.Scheme {
	case "file":
		p := parsedURL.Path
		if p == "" {
			p = parsedURL.Opaque
		}
		if p == "" {
			p = "."
		}
		return NewLocalFS(), p, nil
	default:
		return nil, "", fmt.Errorf("unsupported scheme: %s", parsedURL.Scheme)
	}
}
