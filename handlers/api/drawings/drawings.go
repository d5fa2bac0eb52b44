package drawings

import (
	"emojiart-server/core"
	"emojiart-server/editor"
	"emojiart-server/middleware"
	"emojiart-server/viewport"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"
)

type (
	CreateDrawingRequest struct {
		Name string `json:"name"`
	}

	// SetBackgroundRequest sets a URL, raw image bytes (base64 in JSON), or,
	// when both are empty, a blank background.
	SetBackgroundRequest struct {
		URL       string `json:"url,omitempty"`
		ImageData []byte `json:"imageData,omitempty"`
	}

	// ScreenPoint is a drop location in a client's view, converted to
	// document offsets with the client's viewport.
	ScreenPoint struct {
		X        float64           `json:"x"`
		Y        float64           `json:"y"`
		Width    float64           `json:"width"`
		Height   float64           `json:"height"`
		Viewport viewport.Viewport `json:"viewport"`
	}

	// AddEmojiRequest places Text at X, Y, or at Screen when set. Size 0
	// means DefaultEmojiSize.
	AddEmojiRequest struct {
		Text   string       `json:"text"`
		X      int          `json:"x"`
		Y      int          `json:"y"`
		Size   int          `json:"size"`
		Screen *ScreenPoint `json:"screen,omitempty"`
	}

	AddEmojiResponse struct {
		ID      int           `json:"id"`
		Drawing *core.Drawing `json:"drawing"`
	}

	MoveSelectionRequest struct {
		DX int `json:"dx"`
		DY int `json:"dy"`
	}
)

func writeError(w http.ResponseWriter, r *http.Request, err error, action string) {
	status := http.StatusInternalServerError
	message := "Failed to " + action

	switch {
	case errors.Is(err, core.ErrDrawingNotFound):
		status = http.StatusNotFound
		message = "Drawing not found"
	case errors.Is(err, editor.ErrInvalidInput):
		status = http.StatusBadRequest
		message = err.Error()
	}

	entry := requestLog(r).WithFields(logrus.Fields{
		"error":  err,
		"action": action,
	})
	if status == http.StatusInternalServerError {
		entry.Error("Drawing request failed")
	} else {
		entry.Warn("Drawing request rejected")
	}

	render.Status(r, status)
	render.JSON(w, r, map[string]string{"error": message})
}

// requestLog tags entries with the drawing id and the token subject, if any.
func requestLog(r *http.Request) *logrus.Entry {
	fields := logrus.Fields{}
	if id := chi.URLParam(r, "id"); id != "" {
		fields["drawing_id"] = id
	}
	if subject := middleware.Subject(r.Context()); subject != "" {
		fields["subject"] = subject
	}
	return logrus.WithFields(fields)
}

func badRequest(w http.ResponseWriter, r *http.Request, message string) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, map[string]string{"error": message})
}

func emojiIDParam(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "emojiId"))
	return id, err == nil
}

// HandleList lists drawing metadata.
func HandleList(ed *editor.Editor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		drawings, err := ed.Store().List(r.Context())
		if err != nil {
			writeError(w, r, err, "list drawings")
			return
		}
		if drawings == nil {
			drawings = []*core.Drawing{}
		}
		render.JSON(w, r, drawings)
	}
}

// HandleCreate creates an empty drawing.
func HandleCreate(ed *editor.Editor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateDrawingRequest
		// An empty body creates an unnamed drawing.
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			badRequest(w, r, "Invalid request body")
			return
		}

		d, err := ed.Create(r.Context(), req.Name)
		if err != nil {
			writeError(w, r, err, "create drawing")
			return
		}
		requestLog(r).WithField("drawing_id", d.ID).Info("Drawing created")

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, d)
	}
}

func HandleGet(ed *editor.Editor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := ed.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err, "get drawing")
			return
		}
		render.JSON(w, r, d)
	}
}

func HandleDelete(ed *editor.Editor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := ed.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeError(w, r, err, "delete drawing")
			return
		}
		requestLog(r).Info("Drawing deleted")
		w.WriteHeader(http.StatusNoContent)
	}
}

func HandleSetBackground(ed *editor.Editor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SetBackgroundRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, r, "Invalid request body")
			return
		}

		var bg core.Background
		switch {
		case req.URL != "" && len(req.ImageData) > 0:
			badRequest(w, r, "Only one of url and imageData may be set")
			return
		case req.URL != "":
			bg = core.URLBackground(req.URL)
		case len(req.ImageData) > 0:
			bg = core.ImageDataBackground(req.ImageData)
		default:
			bg = core.BlankBackground()
		}

		d, err := ed.SetBackground(r.Context(), chi.URLParam(r, "id"), bg)
		if err != nil {
			writeError(w, r, err, "set background")
			return
		}
		render.JSON(w, r, d)
	}
}

// DefaultEmojiSize is used when an add request leaves the size out.
const DefaultEmojiSize = 40

// HandleAddEmoji places an emoji at document offsets, or at a screen point
// when the request carries one. In screen mode the size is on-screen and is
// scaled back by the client's zoom.
func HandleAddEmoji(ed *editor.Editor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AddEmojiRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, r, "Invalid request body")
			return
		}

		size := req.Size
		if size == 0 {
			size = DefaultEmojiSize
		}

		x, y := req.X, req.Y
		if s := req.Screen; s != nil {
			x, y = s.Viewport.ToDocument(s.X, s.Y, s.Width, s.Height)
			if size > 0 {
				size = s.Viewport.ToDocumentSize(float64(size))
			}
		}

		d, id, err := ed.AddEmoji(r.Context(), chi.URLParam(r, "id"), req.Text, x, y, size)
		if err != nil {
			writeError(w, r, err, "add emoji")
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, AddEmojiResponse{ID: id, Drawing: d})
	}
}

func HandleDeleteEmoji(ed *editor.Editor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		emojiID, ok := emojiIDParam(r)
		if !ok {
			badRequest(w, r, "Invalid emoji id")
			return
		}

		d, err := ed.DeleteEmoji(r.Context(), chi.URLParam(r, "id"), emojiID)
		if err != nil {
			writeError(w, r, err, "delete emoji")
			return
		}
		render.JSON(w, r, d)
	}
}

// HandleToggleSelection flips the selection of one emoji.
func HandleToggleSelection(ed *editor.Editor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		emojiID, ok := emojiIDParam(r)
		if !ok {
			badRequest(w, r, "Invalid emoji id")
			return
		}

		d, err := ed.SelectEmoji(r.Context(), chi.URLParam(r, "id"), emojiID)
		if err != nil {
			writeError(w, r, err, "select emoji")
			return
		}
		render.JSON(w, r, d)
	}
}

func HandleDeselectAll(ed *editor.Editor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := ed.DeselectAll(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err, "deselect emojis")
			return
		}
		render.JSON(w, r, d)
	}
}

func HandleMoveSelection(ed *editor.Editor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req MoveSelectionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, r, "Invalid request body")
			return
		}

		d, err := ed.MoveSelected(r.Context(), chi.URLParam(r, "id"), req.DX, req.DY)
		if err != nil {
			writeError(w, r, err, "move selection")
			return
		}
		render.JSON(w, r, d)
	}
}

// Routes mounts the drawing API. protect wraps the mutating routes.
func Routes(ed *editor.Editor, protect func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", HandleList(ed))
	r.Get("/{id}", HandleGet(ed))

	r.Group(func(r chi.Router) {
		r.Use(protect)
		r.Post("/", HandleCreate(ed))
		r.Delete("/{id}", HandleDelete(ed))
		r.Put("/{id}/background", HandleSetBackground(ed))
		r.Post("/{id}/emojis", HandleAddEmoji(ed))
		r.Delete("/{id}/emojis/{emojiId}", HandleDeleteEmoji(ed))
		r.Post("/{id}/emojis/{emojiId}/select", HandleToggleSelection(ed))
		r.Delete("/{id}/selection", HandleDeselectAll(ed))
		r.Post("/{id}/selection/move", HandleMoveSelection(ed))
	})

	return r
}
