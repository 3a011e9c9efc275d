// Package fetcher downloads pages politely and caches them on disk.
// A destination file that already exists is never re-fetched, which is
// what makes interrupted batch runs resumable.
package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

// StatusError reports a non-2xx response. The batch driver counts these
// per identifier; there is no automatic retry.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d for %s", e.Code, e.URL)
}

type Config struct {
	UserAgent  string
	Timeout    time.Duration
	DelayFloor time.Duration // minimum politeness delay before each request
	DelayMean  time.Duration // mean of the overall delay, floor included
	RateLimit  float64       // hard cap in requests per second
}

// Fetcher wraps one reused HTTP session. It is owned by the batch driver
// for the duration of a run and passed down to the stages.
type Fetcher struct {
	config  Config
	client  *resty.Client
	limiter *rate.Limiter
	rng     *rand.Rand
	sleep   func(time.Duration)
	log     *slog.Logger
}

func NewWithConfig(config Config, log *slog.Logger) *Fetcher {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.RateLimit == 0 {
		config.RateLimit = 0.5
	}
	if config.DelayMean < config.DelayFloor {
		config.DelayMean = config.DelayFloor
	}

	// Accept-Encoding is deliberately left to the transport: setting it
	// by hand turns off Go's automatic gzip decompression and we would
	// cache compressed bytes.
	client := resty.New()
	client.SetTimeout(config.Timeout)
	client.SetHeaders(map[string]string{
		"User-Agent":      config.UserAgent,
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.5",
		"Connection":      "keep-alive",
	})

	return &Fetcher{
		config:  config,
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(config.RateLimit), 1),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep:   time.Sleep,
		log:     log,
	}
}

// Fetch downloads url into dest. If dest already exists this is a pure
// cache hit: no delay, no network call. The file only appears on disk
// once the full body has been written.
func (f *Fetcher) Fetch(ctx context.Context, url, dest string) error {
	if _, err := os.Stat(dest); err == nil {
		f.log.Debug("cache hit", "dest", dest)
		return nil
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return err
	}

	delay := f.delay()
	f.log.Debug("sleeping before request", "seconds", delay.Seconds(), "url", url)
	f.sleep(delay)

	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return fmt.Errorf("get %s: %w", url, err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return &StatusError{URL: url, Code: resp.StatusCode()}
	}

	return writeAtomic(dest, resp.Body())
}

// delay draws floor + Exp(mean-floor), so requests never fall into a
// fixed-interval pattern the host could mistake for a bot burst.
func (f *Fetcher) delay() time.Duration {
	jitter := f.config.DelayMean - f.config.DelayFloor
	if jitter <= 0 {
		return f.config.DelayFloor
	}
	return f.config.DelayFloor + time.Duration(f.rng.ExpFloat64()*float64(jitter))
}

// writeAtomic stages the body in a temp file and renames it into place,
// so a crash mid-write never leaves a partial file behind to be mistaken
// for a cache hit.
func writeAtomic(dest string, body []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".fetch-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", dest, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", dest, err)
	}

	if err := os.Rename(tmp.Name(), dest); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}
