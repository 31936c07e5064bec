package storage

import (
	"net/url"
	"path/filepath"
	"strings"

	"github.com/ajitpratap0/nsv/pkg/compression"
	"github.com/ajitpratap0/nsv/pkg/errors"
)

// Scheme identifies a storage backend.
type Scheme string

const (
	SchemeFile  Scheme = "file"
	SchemeHTTP  Scheme = "http"
	SchemeHTTPS Scheme = "https"
	SchemeS3    Scheme = "s3"
	SchemeGCS   Scheme = "gs"
)

// Location is a parsed storage URI.
type Location struct {
	Scheme Scheme
	// Bucket is set for s3 and gs.
	Bucket string
	// Key is the object key for s3 and gs, the filesystem path for file and
	// the full URL for http(s).
	Key string
	// Compression is implied by the key's extension.
	Compression compression.Algorithm
	Raw         string
}

// String returns the URI the location was parsed from.
func (l Location) String() string {
	return l.Raw
}

// ParseURI parses a local path, file://, http(s)://, s3:// or gs:// URI.
func ParseURI(uri string) (Location, error) {
	if uri == "" {
		return Location{}, errors.New(errors.ErrorTypeInvalidInput, "empty storage uri")
	}

	loc := Location{Raw: uri}
	loc.Compression, _ = compression.FromPath(uri)

	i := strings.Index(uri, "://")
	if i < 0 {
		loc.Scheme = SchemeFile
		loc.Key = filepath.Clean(uri)
		return loc, nil
	}

	u, err := url.Parse(uri)
	if err != nil {
		return Location{}, errors.Wrap(err, errors.ErrorTypeInvalidInput, "invalid storage uri").
			WithDetail("uri", uri)
	}

	switch Scheme(strings.ToLower(u.Scheme)) {
	case SchemeFile:
		loc.Scheme = SchemeFile
		loc.Key = filepath.FromSlash(u.Host + u.Path)
		if loc.Key == "" {
			return Location{}, errors.New(errors.ErrorTypeInvalidInput, "file uri has no path").WithDetail("uri", uri)
		}
	case SchemeHTTP, SchemeHTTPS:
		loc.Scheme = Scheme(strings.ToLower(u.Scheme))
		loc.Key = uri
		if u.Host == "" {
			return Location{}, errors.New(errors.ErrorTypeInvalidInput, "http uri has no host").WithDetail("uri", uri)
		}
	case SchemeS3, SchemeGCS:
		loc.Scheme = Scheme(strings.ToLower(u.Scheme))
		loc.Bucket = u.Host
		loc.Key = strings.TrimPrefix(u.Path, "/")
		if loc.Bucket == "" || loc.Key == "" {
			return Location{}, errors.Newf(errors.ErrorTypeInvalidInput, "%s uri needs bucket and key", loc.Scheme).
				WithDetail("uri", uri)
		}
	default:
		return Location{}, errors.Newf(errors.ErrorTypeUnsupported, "unsupported storage scheme: %s", u.Scheme).
			WithDetail("uri", uri)
	}
	return loc, nil
}
