package http

import (
	_ "embed"
	"net/http"
	"os"
)

//go:embed skill.md
var defaultSkillManifest []byte

// SkillManifest serves the agent-readable service manual. A manifest on disk
// takes precedence over the embedded default so operators can customize it
// without rebuilding.
func (h *Handlers) SkillManifest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.Cache != nil {
		if data, ok, err := h.Cache.Get(ctx, skillCacheKey); err == nil && ok {
			w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(data)
			return
		}
	}

	data := defaultSkillManifest
	if h.SkillPath != "" {
		if b, err := os.ReadFile(h.SkillPath); err == nil {
			data = b
		}
	}

	if h.Cache != nil {
		_ = h.Cache.Set(ctx, skillCacheKey, data, skillCacheTTL)
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
