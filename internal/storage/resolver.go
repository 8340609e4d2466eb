package storage

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/mediavault/mediavault/pkg/interfaces"
)

// ChainResolver maps recorded share-style paths to whichever on-disk
// location currently exists. Candidates, in order: the literal path, the
// path rewritten from the share root onto the local mount, and the path
// relocated under a developer fallback root. The first existing candidate
// wins.
type ChainResolver struct {
	shareRoot   string
	mountPath   string
	devFallback string
	logger      interfaces.Logger
}

// NewChainResolver creates a resolver. Empty shareRoot/mountPath disables
// the rewrite candidate; empty devFallback disables the fallback candidate.
func NewChainResolver(shareRoot, mountPath, devFallback string, logger interfaces.Logger) *ChainResolver {
	return &ChainResolver{
		shareRoot:   strings.TrimRight(shareRoot, "/"),
		mountPath:   strings.TrimRight(mountPath, "/"),
		devFallback: strings.TrimRight(devFallback, "/"),
		logger:      logger,
	}
}

// Resolve implements interfaces.PathResolver.
func (r *ChainResolver) Resolve(originalPath string) (string, bool) {
	seen := make(map[string]bool)
	for _, candidate := range r.candidates(originalPath) {
		if candidate == "" || seen[candidate] {
			continue
		}
		seen[candidate] = true

		if _, err := os.Stat(candidate); err == nil {
			if candidate != originalPath {
				r.logger.Debug("Resolved media path",
					interfaces.String("original", originalPath),
					interfaces.String("resolved", candidate))
			}
			return candidate, true
		}
	}
	return "", false
}

func (r *ChainResolver) candidates(originalPath string) []string {
	candidates := []string{originalPath}

	if r.shareRoot != "" && r.mountPath != "" && strings.HasPrefix(originalPath, r.shareRoot+"/") {
		relative := strings.TrimPrefix(originalPath, r.shareRoot+"/")
		candidates = append(candidates, filepath.Join(r.mountPath, relative))
	}

	if r.devFallback != "" {
		if filepath.IsAbs(originalPath) {
			candidates = append(candidates, filepath.Join(r.devFallback, strings.TrimPrefix(originalPath, "/")))
		} else {
			candidates = append(candidates, filepath.Join(r.devFallback, originalPath))
		}
	}

	return candidates
}
