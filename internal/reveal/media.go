package reveal

import (
	"math"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	lazyImages      = `img:not([loading="lazy"])`
	lazyBackgrounds = ".lazy-bg[data-bg]"

	// RadialCircumference is the dash length of a full ring (2π·70).
	RadialCircumference = 440.0
)

// Lazy defers offscreen media under root. Images without loading="lazy" get
// it and .lazy-bg elements take their data-bg as the background image. It
// returns the number of elements changed.
func Lazy(root *goquery.Selection) int {
	n := 0
	within(root, lazyImages).Each(func(_ int, img *goquery.Selection) {
		img.SetAttr("loading", "lazy")
		n++
	})
	within(root, lazyBackgrounds).Each(func(_ int, el *goquery.Selection) {
		src := strings.TrimSpace(el.AttrOr("data-bg", ""))
		if src == "" {
			return
		}
		el.SetAttr("style", addDecl(el.AttrOr("style", ""), "background-image: url('"+quoteURL(src)+"')"))
		el.RemoveClass("lazy-bg")
		el.RemoveAttr("data-bg")
		n++
	})
	return n
}

// RadialOffset is the stroke-dashoffset that fills percent of a ring.
// Percent is clamped to [0, 100].
func RadialOffset(percent float64) float64 {
	percent = math.Max(0, math.Min(100, percent))
	offset := RadialCircumference - percent/100*RadialCircumference
	return math.Round(offset*100) / 100
}

// bindRadials sets each ring to its final offset and leaves the entrance to
// the client, which animates the circle from an empty ring and counts the
// label up.
func (a *Animator) bindRadials(root *goquery.Selection) {
	a.claimAll(root, ".radial-progress[data-percent]", func(el *goquery.Selection) {
		percent, err := strconv.ParseFloat(strings.TrimSpace(el.AttrOr("data-percent", "")), 64)
		if err != nil || math.IsNaN(percent) {
			return
		}
		percent = math.Max(0, math.Min(100, percent))
		full := formatFloat(RadialCircumference)

		circle := el.Find(".progress-circle").First()
		circle.SetAttr("stroke-dasharray", full)
		circle.SetAttr("stroke-dashoffset", formatFloat(RadialOffset(percent)))
		circle.SetAttr("data-anim", "radial")
		circle.SetAttr("data-anim-from", full)
		circle.SetAttr("data-anim-start", revealStart)
		circle.SetAttr("data-anim-once", "true")

		label := el.Find(".radial-value").First()
		label.SetText(strconv.Itoa(int(math.Round(percent))) + "%")
		label.SetAttr("data-anim", "counter")
		label.SetAttr("data-anim-to", formatFloat(percent))
		label.SetAttr("data-anim-suffix", "%")
		label.SetAttr("data-anim-start", revealStart)
		label.SetAttr("data-anim-once", "true")
	})
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func quoteURL(s string) string {
	return strings.NewReplacer(`'`, "%27", `\`, "%5C", "\n", "", "\r", "").Replace(s)
}

func addDecl(existing, decl string) string {
	existing = strings.TrimSpace(existing)
	if existing != "" && !strings.HasSuffix(existing, ";") {
		existing += ";"
	}
	if existing != "" {
		existing += " "
	}
	return existing + decl + ";"
}
