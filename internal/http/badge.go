package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog/log"

	"github.com/funcinfra/pipelinectl/internal/badge"
)

// BadgeService fetches rendered badge images from a shields compatible badge service.
type BadgeService struct {
	Client *retryablehttp.Client
	URL    string
}

// NewBadgeService creates a new client.
func NewBadgeService(url string, timeout time.Duration) BadgeService {
	return BadgeService{
		Client: NewRetryableClient(timeout),
		URL:    url,
	}
}

// Render downloads the image of b and writes it to path.
func (s *BadgeService) Render(ctx context.Context, b badge.Badge, path string) error {
	u := b.URL(s.URL)

	img, err := s.fetch(ctx, u)
	if err != nil {
		return &badge.RenderError{URL: u, Err: err}
	}

	if err := os.WriteFile(path, img, 0644); err != nil {
		return &badge.RenderError{URL: u, Err: err}
	}
	log.Debug().Str("badge", path).Str("url", u).Msg("Badge rendered.")

	return nil
}

func (s *BadgeService) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := NewRetryableRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
