// Package netx contains the HTTP helper the client uses to push image bytes
// to a presigned object-store URL.
package netx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
)

// HTTPDoer is satisfied by *http.Client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// PutPresigned uploads data to a presigned PUT URL. Any status other than
// 200 is an error that includes the response body.
func PutPresigned(ctx context.Context, c HTTPDoer, url, contentType string, data []byte) error {
	if c == nil {
		c = http.DefaultClient
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = int64(len(data))

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("upload failed: %s; body: %s", resp.Status, string(b))
	}
	return nil
}
