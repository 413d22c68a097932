package netx

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutPresigned_Success(t *testing.T) {
	var gotMethod, gotCT string
	var gotBody []byte

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotCT = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	err := PutPresigned(context.Background(), ts.Client(), ts.URL+"/users/u1/medications/1_pill.png?X-Amz-Signature=abc", "image/png", []byte("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "image/png", gotCT)
	assert.Equal(t, []byte("png-bytes"), gotBody)
}

func TestPutPresigned_DefaultContentType(t *testing.T) {
	var gotCT string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCT = r.Header.Get("Content-Type")
	}))
	defer ts.Close()

	require.NoError(t, PutPresigned(context.Background(), nil, ts.URL, "", []byte("x")))
	assert.Equal(t, "application/octet-stream", gotCT)
}

func TestPutPresigned_Non200(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("SignatureDoesNotMatch"))
	}))
	defer ts.Close()

	err := PutPresigned(context.Background(), ts.Client(), ts.URL, "image/png", []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.Contains(t, err.Error(), "SignatureDoesNotMatch")
}

type failingDoer struct{}

func (failingDoer) Do(*http.Request) (*http.Response, error) { return nil, errors.New("dial tcp: refused") }

func TestPutPresigned_TransportError(t *testing.T) {
	err := PutPresigned(context.Background(), failingDoer{}, "http://127.0.0.1:1/x", "", []byte("x"))
	assert.EqualError(t, err, "dial tcp: refused")
}

func TestPutPresigned_BadURL(t *testing.T) {
	err := PutPresigned(context.Background(), nil, "://bad", "", nil)
	assert.Error(t, err)
}
