package lifecycle

import (
	"context"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	events []string
}

func (r *recorder) OnComponentsLoaded(context.Context, *goquery.Document) {
	r.events = append(r.events, "components")
}

func (r *recorder) OnContentUpdated(_ context.Context, ev ContentUpdated) {
	r.events = append(r.events, "content:"+string(ev.Section))
}

type sliderOnly struct{ count int }

func (s *sliderOnly) OnSliderReady(context.Context, SliderReady) { s.count++ }

func TestBusDispatchesByInterface(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<div id="blog-grid"></div>`))
	require.NoError(t, err)

	bus := NewBus()
	rec := &recorder{}
	sl := &sliderOnly{}
	require.NoError(t, bus.Subscribe(rec))
	require.NoError(t, bus.Subscribe(sl))

	ctx := context.Background()
	bus.ComponentsLoaded(ctx, doc)
	bus.ContentUpdated(ctx, ContentUpdated{Section: SectionBlog, Selection: doc.Find("#blog-grid")})
	bus.SliderReady(ctx, SliderReady{Section: SectionHome})
	bus.SliderReady(ctx, SliderReady{Section: SectionHome})

	require.Equal(t, []string{"components", "content:blog"}, rec.events)
	require.Equal(t, 2, sl.count)
}

func TestSubscribeRejectsNonListener(t *testing.T) {
	require.Error(t, NewBus().Subscribe(struct{}{}))
}

func TestDiscardIsSilent(t *testing.T) {
	Discard.ComponentsLoaded(context.Background(), nil)
	Discard.ContentUpdated(context.Background(), ContentUpdated{})
	Discard.SliderReady(context.Background(), SliderReady{})
}
