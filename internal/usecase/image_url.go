package usecase

import "strings"

// Default CDN origins. Paths are identical on both hosts.
const (
	DefaultDeadImageOrigin   = "https://pic.qiqi2000.com/"
	DefaultMirrorImageOrigin = "https://bags.qiqiyg.com/"
)

// ImageURLRewriter moves image URLs off a dead CDN origin onto a working mirror
type ImageURLRewriter struct {
	deadOrigin   string
	mirrorOrigin string
}

// NewImageURLRewriter creates a rewriter. Empty origins fall back to the defaults.
func NewImageURLRewriter(deadOrigin, mirrorOrigin string) *ImageURLRewriter {
	if deadOrigin == "" {
		deadOrigin = DefaultDeadImageOrigin
	}
	if mirrorOrigin == "" {
		mirrorOrigin = DefaultMirrorImageOrigin
	}
	return &ImageURLRewriter{deadOrigin: deadOrigin, mirrorOrigin: mirrorOrigin}
}

// Fix rewrites a URL that starts with the dead origin; anything else is returned unchanged.
// Idempotent as long as the mirror does not itself start with the dead origin.
func (r *ImageURLRewriter) Fix(url string) string {
	if url == "" {
		return ""
	}
	if rest, ok := strings.CutPrefix(url, r.deadOrigin); ok {
		return r.mirrorOrigin + rest
	}
	return url
}
