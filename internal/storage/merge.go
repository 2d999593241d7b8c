package storage

import (
	"encoding/json"
	"fmt"
)

// mergePatch applies patch onto doc. Objects merge key by key, arrays and
// scalars replace, and null values in the patch are ignored.
func mergePatch(doc, patch json.RawMessage) (json.RawMessage, error) {
	var base map[string]any
	if len(doc) > 0 {
		if err := json.Unmarshal(doc, &base); err != nil {
			return nil, fmt.Errorf("decode stored document: %w", err)
		}
	}
	if base == nil {
		base = map[string]any{}
	}

	var changes map[string]any
	if err := json.Unmarshal(patch, &changes); err != nil {
		return nil, fmt.Errorf("decode patch: %w", err)
	}

	mergeInto(base, changes)
	return json.Marshal(base)
}

func mergeInto(dst, src map[string]any) {
	for k, v := range src {
		if v == nil {
			continue
		}
		child, ok := v.(map[string]any)
		if !ok {
			dst[k] = v
			continue
		}
		existing, ok := dst[k].(map[string]any)
		if !ok {
			existing = map[string]any{}
			dst[k] = existing
		}
		mergeInto(existing, child)
	}
}
