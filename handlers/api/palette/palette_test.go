package palette

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func TestHandleGetPalette(t *testing.T) {
	handler := HandleGetPalette()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/palette", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status code mismatch: got %d, want %d", rec.Code, http.StatusOK)
	}

	var all PaletteResponse
	if err := json.NewDecoder(rec.Body).Decode(&all); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(all.Emojis) == 0 || len(all.Groups) == 0 {
		t.Fatalf("Expected emojis and groups, got %d/%d", len(all.Emojis), len(all.Groups))
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/palette?group="+url.QueryEscape(all.Groups[0]), nil)
	rec = httptest.NewRecorder()
	handler(rec, req)

	var filtered PaletteResponse
	if err := json.NewDecoder(rec.Body).Decode(&filtered); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if filtered.Group != all.Groups[0] {
		t.Errorf("Group = %q, want %q", filtered.Group, all.Groups[0])
	}
	if len(filtered.Emojis) == 0 || len(filtered.Emojis) >= len(all.Emojis) {
		t.Errorf("Filtered palette size %d, total %d", len(filtered.Emojis), len(all.Emojis))
	}
}
