package asset

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// The resource type wraps a streamable file or remote resource.
type resource struct {
	io.ReadCloser
	url *url.URL
}

// Path returns the location this resource was opened from.
func (r *resource) Path() string {
	if r.IsRemote() {
		return r.url.String()
	}
	return r.url.Path
}

// IsRemote returns true if the resource is streamed over http/https.
func (r *resource) IsRemote() bool {
	return r.url.Scheme != ""
}

// parseLocation accepts plain file paths (with either slash style) and
// http/https URLs.
func parseLocation(location string) (*url.URL, error) {
	if filepath.VolumeName(location) != "" {
		// Windows drive letters would otherwise parse as a URL scheme.
		return &url.URL{Path: location}, nil
	}
	u, err := url.Parse(strings.ReplaceAll(location, `\`, `/`))
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" {
		u.Path = filepath.FromSlash(u.Path)
	}
	return u, nil
}

// resolve joins name onto base, which may be a directory or a URL prefix.
func resolve(base, name string) string {
	u, err := parseLocation(base)
	if err != nil || u.Scheme == "" {
		return filepath.Join(base, name)
	}
	u.Path = path.Join(u.Path, name)
	return u.String()
}

// newResource opens a local file or issues a GET for http/https locations.
// The caller must close the returned resource.
func newResource(ctx context.Context, client *http.Client, location string) (*resource, error) {
	u, err := parseLocation(location)
	if err != nil {
		return nil, err
	}

	var reader io.ReadCloser
	switch u.Scheme {
	case "":
		reader, err = os.Open(filepath.Clean(u.Path))
		if err != nil {
			return nil, err
		}
	case "http", "https":
		if client == nil {
			client = http.DefaultClient
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, err
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("resource: could not fetch '%s': %w", u.String(), err)
		}
		if resp.StatusCode >= 400 {
			resp.Body.Close()
			return nil, fmt.Errorf("resource: could not fetch '%s': status %d", u.String(), resp.StatusCode)
		}
		reader = resp.Body
	default:
		return nil, fmt.Errorf("resource: unsupported scheme '%s'", u.Scheme)
	}

	return &resource{
		ReadCloser: reader,
		url:        u,
	}, nil
}

// localPath returns a filesystem path holding the resource contents. Remote
// resources are copied to a temp file which cleanup removes.
func localPath(res *resource) (p string, cleanup func(), err error) {
	if !res.IsRemote() {
		return res.Path(), func() {}, nil
	}

	f, err := os.CreateTemp("", "viewer-*"+path.Ext(res.url.Path))
	if err != nil {
		return "", nil, err
	}
	cleanup = func() { os.Remove(f.Name()) }
	_, err = io.Copy(f, res)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		cleanup()
		return "", nil, err
	}
	return f.Name(), cleanup, nil
}
