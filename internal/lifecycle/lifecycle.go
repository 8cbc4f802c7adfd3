// Package lifecycle carries the page-level notifications exchanged by the
// render stages. Publishing is synchronous and in subscription order.
package lifecycle

import (
	"context"
	"fmt"
	"sync"

	"github.com/PuerkitoBio/goquery"
)

// Section names a content grid or slider that changed.
type Section string

const (
	SectionBlog     Section = "blog"
	SectionWorks    Section = "works"
	SectionCases    Section = "cases"
	SectionFeatured Section = "featured"
	SectionRelated  Section = "related"
	SectionGallery  Section = "gallery"
	SectionHome     Section = "home-portfolio"
	SectionDynamic  Section = "dynamic"
)

// ContentUpdated reports nodes newly inserted into the document.
type ContentUpdated struct {
	Section   Section
	Selection *goquery.Selection
}

// SliderReady reports a slider wrapper whose slides have been rendered.
type SliderReady struct {
	Section   Section
	Selection *goquery.Selection
}

type ComponentsLoadedListener interface {
	OnComponentsLoaded(ctx context.Context, doc *goquery.Document)
}

type ContentUpdatedListener interface {
	OnContentUpdated(ctx context.Context, ev ContentUpdated)
}

type SliderReadyListener interface {
	OnSliderReady(ctx context.Context, ev SliderReady)
}

// Bus fans notifications out to explicitly registered listeners.
type Bus struct {
	mu         sync.RWMutex
	components []ComponentsLoadedListener
	content    []ContentUpdatedListener
	sliders    []SliderReadyListener
}

func NewBus() *Bus { return &Bus{} }

// Subscribe registers l for every listener interface it implements. A value
// that implements none of them is rejected.
func (b *Bus) Subscribe(l any) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	matched := false
	if c, ok := l.(ComponentsLoadedListener); ok {
		b.components = append(b.components, c)
		matched = true
	}
	if c, ok := l.(ContentUpdatedListener); ok {
		b.content = append(b.content, c)
		matched = true
	}
	if c, ok := l.(SliderReadyListener); ok {
		b.sliders = append(b.sliders, c)
		matched = true
	}
	if !matched {
		return fmt.Errorf("lifecycle: %T implements no listener interface", l)
	}
	return nil
}

func (b *Bus) ComponentsLoaded(ctx context.Context, doc *goquery.Document) {
	b.mu.RLock()
	ls := append([]ComponentsLoadedListener(nil), b.components...)
	b.mu.RUnlock()
	for _, l := range ls {
		l.OnComponentsLoaded(ctx, doc)
	}
}

func (b *Bus) ContentUpdated(ctx context.Context, ev ContentUpdated) {
	b.mu.RLock()
	ls := append([]ContentUpdatedListener(nil), b.content...)
	b.mu.RUnlock()
	for _, l := range ls {
		l.OnContentUpdated(ctx, ev)
	}
}

func (b *Bus) SliderReady(ctx context.Context, ev SliderReady) {
	b.mu.RLock()
	ls := append([]SliderReadyListener(nil), b.sliders...)
	b.mu.RUnlock()
	for _, l := range ls {
		l.OnSliderReady(ctx, ev)
	}
}

// Publisher is the emitting side used by render stages.
type Publisher interface {
	ComponentsLoaded(ctx context.Context, doc *goquery.Document)
	ContentUpdated(ctx context.Context, ev ContentUpdated)
	SliderReady(ctx context.Context, ev SliderReady)
}

// Discard drops every notification.
var Discard Publisher = discard{}

type discard struct{}

func (discard) ComponentsLoaded(context.Context, *goquery.Document) {}
func (discard) ContentUpdated(context.Context, ContentUpdated)      {}
func (discard) SliderReady(context.Context, SliderReady)            {}
