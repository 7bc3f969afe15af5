package player

import (
	"fmt"

	"github.com/go-drift/nativevideo/pkg/texture"
)

// binding pairs the two independently acquired halves of video output:
// the native player and the host surface. Either may appear first, and the
// surface may disappear and return while the player lives on. reconcile is
// called from both acquisition paths and connects them once both exist.
type binding struct {
	player   NativePlayer
	surface  texture.Surface
	attached texture.Surface
}

// reconcile attaches the surface to the player when both are present and
// not already connected.
func (b *binding) reconcile() error {
	if b.player == nil || b.surface == nil || !b.surface.IsValid() {
		return nil
	}
	if b.attached == b.surface {
		return nil
	}
	if err := b.player.AttachSurface(b.surface); err != nil {
		return fmt.Errorf("attach surface: %w", err)
	}
	b.attached = b.surface
	return nil
}

// detach disconnects video output after the host destroyed the surface.
// The player is left running.
func (b *binding) detach() {
	if b.player != nil && b.attached != nil {
		b.player.DetachSurface()
	}
	b.attached = nil
	b.surface = nil
}

// bound reports whether video output currently reaches a surface.
func (b *binding) bound() bool {
	return b.attached != nil && b.attached.IsValid()
}

func (b *binding) clear() {
	b.player = nil
	b.surface = nil
	b.attached = nil
}
