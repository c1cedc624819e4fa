// Package color derives stable visual colors from author names. The same
// name always maps to the same color, across runs and machines.
package color

import "fmt"

// Descriptor holds the derived tones for one author. Background and
// Border are CSS hsl() strings for UI surfaces; Hue is the raw hue used
// for discrete bucket selection.
type Descriptor struct {
	Background string
	Border     string
	Hue        int
}

// palette is the set of discrete group colors the browser offers for tab
// groups. Order is fixed: changing it would reshuffle every author's
// bucket.
var palette = []string{
	"blue", "red", "yellow", "green", "pink", "purple", "cyan", "orange",
}

// hashName folds character codes into a 32-bit signed hash
// (h = h*31 + code), matching the classic Java string hash.
func hashName(name string) int32 {
	var h int32
	for _, r := range name {
		h = h*31 + int32(r)
	}
	return h
}

// For returns the color descriptor for an author name, or nil for an
// empty name (a document with no resolvable author stays ungrouped).
func For(name string) *Descriptor {
	if name == "" {
		return nil
	}

	h := int(hashName(name))
	if h < 0 {
		h = -h
	}

	hue := h % 360
	sat := 45 + h%20
	light := 85 + h%10

	return &Descriptor{
		Background: fmt.Sprintf("hsl(%d, %d%%, %d%%)", hue, sat, light),
		Border:     fmt.Sprintf("hsl(%d, %d%%, %d%%)", hue, sat+20, light-30),
		Hue:        hue,
	}
}

// Bucket maps a hue in [0,360) onto one of the discrete palette colors.
func Bucket(hue int) string {
	n := len(palette)
	idx := (hue * n / 360) % n
	if idx < 0 {
		idx += n
	}
	return palette[idx]
}
