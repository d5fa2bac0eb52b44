package emoji

import (
	"strings"

	"github.com/forPelevin/gomoji"
	"github.com/pkg/errors"
)

// ErrInvalidEmoji is returned when a glyph is not exactly one emoji.
var ErrInvalidEmoji = errors.New("text must be a single emoji")

const variationSelector = "\uFE0F"

// bare drops emoji presentation selectors. gomoji reports some fully
// qualified emojis (❤️, ⚽️) by their base character only.
func bare(s string) string {
	return strings.ReplaceAll(s, variationSelector, "")
}

func single(text, want string) bool {
	found := gomoji.CollectAll(text)
	return len(found) == 1 && bare(found[0].Character) == want
}

// Validate checks that text contains one emoji and nothing else. Variation
// selectors are ignored, so "❤" and "❤️" are both accepted.
func Validate(text string) error {
	want := bare(text)
	if want == "" || !(single(text, want) || single(want, want)) {
		return errors.Wrapf(ErrInvalidEmoji, "got %q", text)
	}
	return nil
}

// Palette returns the characters of all known emojis, restricted to group
// when it is non-empty. Group matching ignores case. Entries that Validate
// would reject are left out.
func Palette(group string) []string {
	all := gomoji.AllEmojis()
	seen := make(map[string]struct{}, len(all))
	out := make([]string, 0, len(all))
	for _, e := range all {
		if group != "" && !strings.EqualFold(e.Group, group) {
			continue
		}
		// Some keycaps carry a stray leading selector in the emoji data.
		char := strings.TrimLeft(e.Character, variationSelector)
		if _, dup := seen[char]; dup {
			continue
		}
		if Validate(char) != nil {
			continue
		}
		seen[char] = struct{}{}
		out = append(out, char)
	}
	return out
}

// Groups lists the Unicode emoji groups in first-seen order.
func Groups() []string {
	seen := make(map[string]struct{})
	var groups []string
	for _, e := range gomoji.AllEmojis() {
		if _, ok := seen[e.Group]; ok {
			continue
		}
		seen[e.Group] = struct{}{}
		groups = append(groups, e.Group)
	}
	return groups
}
