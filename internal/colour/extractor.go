// Package colour derives a representative accent colour from artwork
// thumbnails via web-safe palette reduction.
package colour

import (
	"context"
	"fmt"
	"image"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"sort"
	"time"

	// Codecs for the thumbnail formats the platforms serve.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/nfnt/resize"
	"go.uber.org/zap"
	_ "golang.org/x/image/webp" // register WebP decoder

	"sharemusic/pkg/songlink"
)

const (
	// maxEdge is the longest edge the thumbnail is downscaled to before
	// quantization, purely to bound processing cost.
	maxEdge = 150
	// paletteSize is the maximum number of palette entries kept.
	paletteSize = 10
	// pickPoolSize is how many of the top-ranked palette entries the final
	// colour is picked from. Picking pseudo-randomly instead of always
	// taking the single most frequent entry varies the accent across
	// repeated shares of the same artwork.
	pickPoolSize = 4
	// defaultTimeout bounds the thumbnail fetch.
	defaultTimeout = 10 * time.Second
	// maxImageSize limits how many image bytes are read.
	maxImageSize = 8 << 20
)

// RGB is an 8-bit-per-channel colour. The zero value is the neutral
// no-colour accent.
type RGB struct {
	R, G, B uint8
}

// Int packs the colour into a single 24-bit integer (red<<16|green<<8|blue).
func (c RGB) Int() int {
	return int(c.R)<<16 | int(c.G)<<8 | int(c.B)
}

// Extractor fetches thumbnails and derives their dominant colour. Colour is
// cosmetic: every failure mode degrades to the neutral colour instead of
// propagating an error.
type Extractor struct {
	httpClient *http.Client
	logger     *zap.Logger
	observe    songlink.Observer
	pick       func(n int) int
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithObserver attaches a latency/status observer to thumbnail fetches.
func WithObserver(observe songlink.Observer) Option {
	return func(e *Extractor) { e.observe = observe }
}

// withPick overrides the palette pick for deterministic tests.
func withPick(pick func(n int) int) Option {
	return func(e *Extractor) { e.pick = pick }
}

// NewExtractor creates a colour extractor with the given fetch timeout.
func NewExtractor(timeout time.Duration, logger *zap.Logger, opts ...Option) *Extractor {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	e := &Extractor{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		pick:       rand.Intn, // #nosec G404 - non-cryptographic accent colour variety
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Dominant fetches the thumbnail and returns a representative colour:
// the image is downscaled, quantized to a reduced web-safe palette, the
// palette ranked by pixel frequency, and one of the top entries picked.
// An empty URL returns the neutral colour without any network call.
func (e *Extractor) Dominant(ctx context.Context, thumbnailURL string) RGB {
	if thumbnailURL == "" {
		return RGB{}
	}

	img, err := e.fetchImage(ctx, thumbnailURL)
	if err != nil {
		e.logger.Debug("Falling back to neutral accent colour",
			zap.String("url", thumbnailURL),
			zap.Error(err))
		return RGB{}
	}

	palette := quantize(resize.Thumbnail(maxEdge, maxEdge, img, resize.Lanczos3))
	if len(palette) == 0 {
		return RGB{}
	}

	pool := pickPoolSize
	if pool > len(palette) {
		pool = len(palette)
	}
	return palette[e.pick(pool)]
}

func (e *Extractor) fetchImage(ctx context.Context, url string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := e.httpClient.Do(req)
	if err != nil {
		if e.observe != nil {
			e.observe(http.MethodGet, thumbnailHost(url), 0, time.Since(start))
		}
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if e.observe != nil {
		e.observe(http.MethodGet, thumbnailHost(url), resp.StatusCode, time.Since(start))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("thumbnail fetch returned status %d", resp.StatusCode)
	}

	img, _, err := image.Decode(io.LimitReader(resp.Body, maxImageSize))
	if err != nil {
		return nil, fmt.Errorf("failed to decode thumbnail: %w", err)
	}
	return img, nil
}

// quantize maps every pixel to the nearest web-safe colour and returns the
// most frequent entries, best first, capped at paletteSize. Frequency ties
// break on the packed colour value so the ranking is deterministic.
func quantize(img image.Image) []RGB {
	counts := make(map[RGB]int)

	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			c := RGB{
				R: webSafe(uint8(r >> 8)),
				G: webSafe(uint8(g >> 8)),
				B: webSafe(uint8(b >> 8)),
			}
			counts[c]++
		}
	}

	palette := make([]RGB, 0, len(counts))
	for c := range counts {
		palette = append(palette, c)
	}
	sort.Slice(palette, func(i, j int) bool {
		if counts[palette[i]] != counts[palette[j]] {
			return counts[palette[i]] > counts[palette[j]]
		}
		return palette[i].Int() < palette[j].Int()
	})

	if len(palette) > paletteSize {
		palette = palette[:paletteSize]
	}
	return palette
}

// webSafe rounds a channel to the nearest multiple of 51, the 6-level
// web-safe grid.
func webSafe(v uint8) uint8 {
	return uint8((int(v) + 25) / 51 * 51)
}

// thumbnailHost reduces a thumbnail URL to scheme://host for metric labels,
// keeping per-image path segments out of the label set.
func thumbnailHost(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "unknown.host"
	}
	return u.Scheme + "://" + u.Host
}
