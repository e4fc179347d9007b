package assembly

import "errors"

var (
	// ErrTemplateLoad is fatal: the template could not be opened or parsed.
	ErrTemplateLoad = errors.New("template load failed")

	ErrMarkerNotFound   = errors.New("marker not found")
	ErrAssetMissing     = errors.New("asset missing")
	ErrUnsupportedAsset = errors.New("unsupported asset format")
	ErrEmptyFeedback    = errors.New("no feedback entries")
)
