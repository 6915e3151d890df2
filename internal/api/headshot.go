package api

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"pitchmap/internal/config"
	"pitchmap/internal/constants"

	"github.com/valyala/fasthttp"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// HeadshotClient fetches player photos. Every failure is returned to the
// caller to log and ignore; a missing headshot never fails a request.
type HeadshotClient struct {
	baseURL string
	client  *fasthttp.Client
}

func NewHeadshotClient(cfg *config.Config) *HeadshotClient {
	return &HeadshotClient{
		baseURL: cfg.PhotosBaseURL,
		client: &fasthttp.Client{
			MaxConnsPerHost: 10,
			ReadTimeout:     constants.HeadshotTimeout,
			WriteTimeout:    constants.HeadshotTimeout,
		},
	}
}

// Fetch returns the current headshot PNG for one player.
func (c *HeadshotClient) Fetch(ctx context.Context, playerID int) ([]byte, error) {
	reqURL := fmt.Sprintf("%s/mlb-photos/image/upload/v1/people/%d/headshot/silo/current.png", c.baseURL, playerID)

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(reqURL)
	req.Header.SetMethod(fasthttp.MethodGet)

	deadline := time.Now().Add(constants.HeadshotTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		return nil, err
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("headshot fetch failed: %d", resp.StatusCode())
	}

	body := resp.Body()
	if !bytes.HasPrefix(body, pngMagic) {
		return nil, fmt.Errorf("headshot response is not a PNG")
	}

	out := make([]byte, len(body))
	copy(out, body)
	return out, nil
}
