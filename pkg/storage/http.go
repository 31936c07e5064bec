package storage

import (
	"context"
	"net/http"

	"github.com/ajitpratap0/nsv/pkg/errors"
	"github.com/ajitpratap0/nsv/pkg/observability"
)

type httpBackend struct {
	client *http.Client
}

func (h *httpBackend) read(ctx context.Context, loc Location) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, loc.Key, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeInvalidInput, "failed to build request").WithDetail("uri", loc.Raw)
	}
	observability.InjectHTTP(ctx, req.Header)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "http request failed").WithDetail("uri", loc.Raw)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf(errors.ErrorTypeFile, "http status %d", resp.StatusCode).
			WithDetail("uri", loc.Raw).
			WithDetail("status", resp.StatusCode)
	}

	data, err := readAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to read response body").WithDetail("uri", loc.Raw)
	}
	return data, nil
}

func (h *httpBackend) write(_ context.Context, loc Location, _ []byte) error {
	return errors.New(errors.ErrorTypeUnsupported, "http storage is read only").WithDetail("uri", loc.Raw)
}
