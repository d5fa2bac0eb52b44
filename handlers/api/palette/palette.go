package palette

import (
	"emojiart-server/emoji"
	"net/http"

	"github.com/go-chi/render"
)

type PaletteResponse struct {
	Group  string   `json:"group,omitempty"`
	Groups []string `json:"groups"`
	Emojis []string `json:"emojis"`
}

// HandleGetPalette returns the emojis a client can offer for dragging,
// optionally filtered with ?group=.
func HandleGetPalette() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		group := r.URL.Query().Get("group")
		render.JSON(w, r, PaletteResponse{
			Group:  group,
			Groups: emoji.Groups(),
			Emojis: emoji.Palette(group),
		})
	}
}
