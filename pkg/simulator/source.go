package simulator

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// Failure modes selected by the sim:// host.
const (
	hostFailSetup    = "fail-setup"
	hostFailPlayback = "fail-playback"
)

// Errors raised by simulated media.
var (
	ErrSetupFailed    = errors.New("simulator: source rejected")
	ErrPlaybackFailed = errors.New("simulator: decoder failure")
	ErrReleased       = errors.New("simulator: player released")
)

// Media describes the clip a source resolves to.
type Media struct {
	Duration  time.Duration
	Width     int
	Height    int
	Preroll   time.Duration
	FailAfter time.Duration // zero means never
}

// DefaultMedia is used for any source without sim:// parameters.
func DefaultMedia() Media {
	return Media{
		Duration: 10 * time.Second,
		Width:    1280,
		Height:   720,
		Preroll:  200 * time.Millisecond,
	}
}

// ParseSource resolves a source URI to simulated media. sim:// sources
// accept duration, width, height and buffer (preroll) query parameters,
// durations in milliseconds. sim://fail-setup is rejected outright and
// sim://fail-playback errors shortly after playback starts.
func ParseSource(uri string) (Media, error) {
	m := DefaultMedia()
	u, err := url.Parse(uri)
	if err != nil {
		return m, fmt.Errorf("%w: %v", ErrSetupFailed, err)
	}
	if u.Scheme != "sim" {
		return m, nil
	}

	switch u.Host {
	case hostFailSetup:
		return m, fmt.Errorf("%w: %s", ErrSetupFailed, uri)
	case hostFailPlayback:
		m.FailAfter = 500 * time.Millisecond
	}

	q := u.Query()
	ms := func(key string, dst *time.Duration) error {
		if v := q.Get(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return fmt.Errorf("%w: bad %s %q", ErrSetupFailed, key, v)
			}
			*dst = time.Duration(n) * time.Millisecond
		}
		return nil
	}
	px := func(key string, dst *int) error {
		if v := q.Get(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				return fmt.Errorf("%w: bad %s %q", ErrSetupFailed, key, v)
			}
			*dst = n
		}
		return nil
	}
	for _, err := range []error{
		ms("duration", &m.Duration),
		ms("buffer", &m.Preroll),
		ms("failAfter", &m.FailAfter),
		px("width", &m.Width),
		px("height", &m.Height),
	} {
		if err != nil {
			return m, err
		}
	}
	if m.Duration == 0 {
		return m, fmt.Errorf("%w: zero duration", ErrSetupFailed)
	}
	return m, nil
}
