package gcs

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

type roundTripFunc func(*http.Request) *http.Response

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req), nil
}

func newTestClient(fn roundTripFunc) *Client {
	return &Client{
		defaultBucket: "bucket",
		apiBase:       "https://gcs.test",
		tokenSource: &tokenSource{fetch: func(context.Context) (string, time.Time, error) {
			return "token", time.Now().Add(time.Hour), nil
		}},
		httpClient: &http.Client{Transport: fn},
	}
}

func response(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{},
	}
}

func TestUploadSendsMediaRequest(t *testing.T) {
	client := newTestClient(func(req *http.Request) *http.Response {
		require.Equal(t, http.MethodPost, req.Method)
		require.Equal(t, "/upload/storage/v1/b/bucket/o", req.URL.Path)
		require.Equal(t, "media", req.URL.Query().Get("uploadType"))
		require.Equal(t, "private-labels/c1/art.png", req.URL.Query().Get("name"))
		require.Equal(t, "image/png", req.Header.Get("Content-Type"))
		require.Equal(t, "Bearer token", req.Header.Get("Authorization"))
		body, _ := io.ReadAll(req.Body)
		require.Equal(t, "pngbytes", string(body))
		return response(http.StatusOK, `{"name":"private-labels/c1/art.png","contentType":"image/png","size":"8"}`)
	})

	obj, err := client.Upload(context.Background(), "/private-labels/c1/art.png", "image/png", strings.NewReader("pngbytes"))
	require.NoError(t, err)
	require.Equal(t, "private-labels/c1/art.png", obj.Name)
	require.Equal(t, int64(8), obj.Size)
	require.Equal(t, "https://storage.googleapis.com/bucket/private-labels/c1/art.png", obj.URL)
}

func TestUploadSurfacesStatus(t *testing.T) {
	client := newTestClient(func(req *http.Request) *http.Response {
		return response(http.StatusForbidden, "denied")
	})

	_, err := client.Upload(context.Background(), "x.png", "image/png", strings.NewReader("x"))
	require.ErrorContains(t, err, "denied")
}

func TestDeleteObjectSuccess(t *testing.T) {
	client := newTestClient(func(req *http.Request) *http.Response {
		require.Equal(t, http.MethodDelete, req.Method)
		require.Equal(t, "Bearer token", req.Header.Get("Authorization"))
		return response(http.StatusNoContent, "")
	})

	require.NoError(t, client.Delete(context.Background(), "media/file.png"))
}

func TestDeleteObjectNotFound(t *testing.T) {
	client := newTestClient(func(req *http.Request) *http.Response {
		return response(http.StatusNotFound, "")
	})

	require.NoError(t, client.DeleteObject(context.Background(), "bucket", "media/file.png"))
}

func TestDeleteObjectServerError(t *testing.T) {
	client := newTestClient(func(req *http.Request) *http.Response {
		return response(http.StatusInternalServerError, "boom")
	})

	require.Error(t, client.Delete(context.Background(), "media/file.png"))
}

func TestPublicURLUsesConfiguredBase(t *testing.T) {
	client := &Client{defaultBucket: "bucket", publicBase: "https://cdn.example.com"}
	require.Equal(t, "https://cdn.example.com/a/b.png", client.PublicURL("a/b.png"))
}

func TestSignAssertionVerifiesWithPublicKey(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	signed, err := signAssertion("svc@example.com", key, tokenEndpoint, time.Now())
	require.NoError(t, err)

	parsed, err := jwt.Parse(signed, func(tok *jwt.Token) (interface{}, error) {
		return &key.PublicKey, nil
	}, jwt.WithValidMethods([]string{"RS256"}))
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	require.Equal(t, "svc@example.com", claims["iss"])
	require.Equal(t, scope, claims["scope"])
}

func TestTokenSourceCachesToken(t *testing.T) {
	calls := 0
	ts := &tokenSource{fetch: func(context.Context) (string, time.Time, error) {
		calls++
		return "tok", time.Now().Add(time.Hour), nil
	}}
	for i := 0; i < 3; i++ {
		tok, err := ts.Token(context.Background())
		require.NoError(t, err)
		require.Equal(t, "tok", tok)
	}
	require.Equal(t, 1, calls)
}
