package reveal

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mustafabch/website/internal/testutil"
)

func TestLazy(t *testing.T) {
	doc := testutil.ParseString(t, `<html><body>
<img id="plain" src="/a.jpg">
<img id="eager" src="/b.jpg" loading="eager">
<img id="lazy" src="/c.jpg" loading="lazy">
<section id="bg" class="hero lazy-bg" data-bg="/img/it's.jpg" style="min-height: 300px"></section>
<section id="empty" class="lazy-bg" data-bg=""></section>
<section id="nobg" class="lazy-bg"></section>
</body></html>`)

	require.Equal(t, 3, Lazy(doc.Selection))

	for _, id := range []string{"plain", "eager", "lazy"} {
		require.Equal(t, "lazy", doc.Find("#"+id).AttrOr("loading", ""), id)
	}
	bg := doc.Find("#bg")
	require.Equal(t, `min-height: 300px; background-image: url('/img/it%27s.jpg');`, bg.AttrOr("style", ""))
	require.False(t, bg.HasClass("lazy-bg"))
	require.True(t, bg.HasClass("hero"))
	_, ok := bg.Attr("data-bg")
	require.False(t, ok)

	require.True(t, doc.Find("#empty").HasClass("lazy-bg"))
	require.True(t, doc.Find("#nobg").HasClass("lazy-bg"))

	require.Zero(t, Lazy(doc.Selection), "a second pass changes nothing")
}

func TestLazyOnFragmentRoot(t *testing.T) {
	doc := testutil.ParseString(t, `<html><body><img id="root" src="/x.jpg"></body></html>`)
	require.Equal(t, 1, Lazy(doc.Find("#root")))
	require.Equal(t, "lazy", doc.Find("#root").AttrOr("loading", ""))
}

func TestRadialOffset(t *testing.T) {
	cases := []struct {
		percent float64
		want    float64
	}{
		{0, 440},
		{25, 330},
		{33, 294.8},
		{75, 110},
		{100, 0},
		{-10, 440},
		{150, 0},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, RadialOffset(tc.percent), "percent %v", tc.percent)
	}
}

func TestRunBindsRadialProgress(t *testing.T) {
	doc := testutil.ParseString(t, `<html><body>
<div class="radial-progress" id="r1" data-percent="75">
  <svg><circle class="progress-bg"></circle><circle class="progress-circle"></circle></svg>
  <span class="radial-value">0%</span>
</div>
<div class="radial-progress" id="r2" data-percent="n/a"><svg><circle class="progress-circle"></circle></svg></div>
</body></html>`)

	a := New(doc)
	a.Run(doc.Selection)

	circle := doc.Find("#r1 .progress-circle")
	require.Equal(t, "440", circle.AttrOr("stroke-dasharray", ""))
	require.Equal(t, "110", circle.AttrOr("stroke-dashoffset", ""))
	require.Equal(t, "radial", circle.AttrOr("data-anim", ""))
	require.Equal(t, "440", circle.AttrOr("data-anim-from", ""))
	_, bgBound := doc.Find("#r1 .progress-bg").Attr("data-anim")
	require.False(t, bgBound)

	label := doc.Find("#r1 .radial-value")
	require.Equal(t, "75%", label.Text())
	require.Equal(t, "75", label.AttrOr("data-anim-to", ""))
	require.Equal(t, "%", label.AttrOr("data-anim-suffix", ""))

	_, ok := doc.Find("#r2 .progress-circle").Attr("stroke-dashoffset")
	require.False(t, ok, "unparseable percentages are left alone")

	circle.SetAttr("stroke-dashoffset", "1")
	a.Run(doc.Selection)
	require.Equal(t, "1", circle.AttrOr("stroke-dashoffset", ""), "rings bind once")
}
