package audio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/wav"
)

// mediaClient fetches narration files. Media downloads bypass the shared
// request queue: they are large, uncacheable, and must not block API calls.
var mediaClient = &http.Client{Timeout: 60 * time.Second}

// FetchMedia downloads an audio resource and decodes it. The whole file is
// buffered in memory so the decoder can seek.
func FetchMedia(ctx context.Context, url string) (beep.StreamSeekCloser, beep.Format, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("invalid media url: %w", err)
	}

	resp, err := mediaClient.Do(req)
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("media fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, beep.Format{}, fmt.Errorf("media fetch failed: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("media read failed: %w", err)
	}

	return DecodeMedia(data)
}

// DecodeMedia decodes an in-memory audio file, trying MP3 first, then WAV.
func DecodeMedia(data []byte) (beep.StreamSeekCloser, beep.Format, error) {
	streamer, format, err := mp3.Decode(nopCloser{bytes.NewReader(data)})
	if err == nil {
		return streamer, format, nil
	}

	streamer, format, err = wav.Decode(nopCloser{bytes.NewReader(data)})
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("undecodable media: %w", err)
	}
	return streamer, format, nil
}

type nopCloser struct{ *bytes.Reader }

func (nopCloser) Close() error { return nil }
