package toolset

import (
	"github.com/ternarybob/arbor"

	"pdftriage/internal/model"
)

// SelectLargest resolves every image in refs and returns the one with the
// most encoded bytes. Ties keep the earliest image. Images that cannot be
// resolved are logged and skipped; ok is false when none could be resolved.
func SelectLargest(page model.Page, refs []model.ImageRef, logger arbor.ILogger) (largest *model.RawImage, ok bool) {
	maxSize := 0
	for _, ref := range refs {
		raw, err := page.ResolveImage(ref)
		if err != nil {
			logger.Warn().Err(err).Int("page", page.Number()).Str("image", ref.Name).Msg("Failed to extract image")
			continue
		}
		if len(raw.Data) > maxSize {
			maxSize = len(raw.Data)
			largest = raw
		}
	}
	return largest, largest != nil
}
