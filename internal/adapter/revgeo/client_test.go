// internal/adapter/revgeo/client_test.go

package revgeo

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifeline/internal/domain/geo"
)

type mockTransport struct {
	response *http.Response
	err      error
	lastReq  *http.Request
}

func (m *mockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

func newTestClient(transport *mockTransport) *Client {
	c := NewClient("http://geocode.test")
	c.httpClient = &http.Client{Transport: transport}
	return c
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func TestCityAt(t *testing.T) {
	transport := &mockTransport{response: jsonResponse(http.StatusOK, `{"city":"Quezon City"}`)}
	client := newTestClient(transport)

	city, err := client.CityAt(context.Background(), geo.Coordinates{Latitude: 14.676, Longitude: 121.0437})
	require.NoError(t, err)
	assert.Equal(t, "Quezon City", city)

	require.NotNil(t, transport.lastReq)
	assert.Equal(t, http.MethodGet, transport.lastReq.Method)
	assert.Equal(t, "/api/reverse-geocode", transport.lastReq.URL.Path)
	assert.Equal(t, "14.676", transport.lastReq.URL.Query().Get("latitude"))
	assert.Equal(t, "121.0437", transport.lastReq.URL.Query().Get("longitude"))
}

func TestCityAtNonOKStatus(t *testing.T) {
	transport := &mockTransport{response: jsonResponse(http.StatusBadGateway, `{}`)}
	client := newTestClient(transport)

	_, err := client.CityAt(context.Background(), geo.Coordinates{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestCityAtMalformedBody(t *testing.T) {
	transport := &mockTransport{response: jsonResponse(http.StatusOK, `not json`)}
	client := newTestClient(transport)

	_, err := client.CityAt(context.Background(), geo.Coordinates{})
	assert.Error(t, err)
}
