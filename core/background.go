package core

import (
	"encoding/json"
	"fmt"
)

// BackgroundKind identifies which background variant is active.
type BackgroundKind string

const (
	BackgroundBlank     BackgroundKind = "blank"
	BackgroundURL       BackgroundKind = "url"
	BackgroundImageData BackgroundKind = "imageData"
)

// Background is the canvas's backing image reference. Exactly one variant is
// active; the zero value is a blank background.
type Background struct {
	kind BackgroundKind
	url  string
	data []byte
}

func BlankBackground() Background {
	return Background{kind: BackgroundBlank}
}

// URLBackground references a remote image. The URL is stored as given; fetching
// and decoding it is up to the client.
func URLBackground(u string) Background {
	return Background{kind: BackgroundURL, url: u}
}

// ImageDataBackground holds raw encoded image bytes.
func ImageDataBackground(data []byte) Background {
	cp := make([]byte, len(data))
	copy(cp, data)
	return Background{kind: BackgroundImageData, data: cp}
}

func (b Background) Kind() BackgroundKind {
	if b.kind == "" {
		return BackgroundBlank
	}
	return b.kind
}

// URL returns the remote reference, or "" for other variants.
func (b Background) URL() string {
	return b.url
}

// ImageData returns a copy of the raw bytes, or nil for other variants.
func (b Background) ImageData() []byte {
	if b.data == nil {
		return nil
	}
	cp := make([]byte, len(b.data))
	copy(cp, b.data)
	return cp
}

type backgroundJSON struct {
	Kind      BackgroundKind `json:"kind"`
	URL       string         `json:"url,omitempty"`
	ImageData []byte         `json:"imageData,omitempty"`
}

func (b Background) MarshalJSON() ([]byte, error) {
	return json.Marshal(backgroundJSON{
		Kind:      b.Kind(),
		URL:       b.url,
		ImageData: b.data,
	})
}

func (b *Background) UnmarshalJSON(data []byte) error {
	var raw backgroundJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch raw.Kind {
	case BackgroundBlank, "":
		*b = BlankBackground()
	case BackgroundURL:
		*b = URLBackground(raw.URL)
	case BackgroundImageData:
		*b = Background{kind: BackgroundImageData, data: raw.ImageData}
	default:
		return fmt.Errorf("unknown background kind %q", raw.Kind)
	}
	return nil
}
