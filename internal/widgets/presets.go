package widgets

// SliderConfig mirrors the slider library's options object.
type SliderConfig struct {
	SlidesPerView  int                `json:"slidesPerView"`
	SpaceBetween   int                `json:"spaceBetween"`
	Loop           bool               `json:"loop"`
	Speed          int                `json:"speed,omitempty"`
	RTL            bool               `json:"rtl"`
	Observer       bool               `json:"observer"`
	ObserveParents bool               `json:"observeParents"`
	AllowTouchMove *bool              `json:"allowTouchMove,omitempty"`
	Autoplay       *Autoplay          `json:"autoplay,omitempty"`
	Navigation     *Navigation        `json:"navigation,omitempty"`
	Pagination     *Pagination        `json:"pagination,omitempty"`
	Breakpoints    map[int]Breakpoint `json:"breakpoints,omitempty"`
}

type Autoplay struct {
	Delay                int  `json:"delay"`
	DisableOnInteraction bool `json:"disableOnInteraction"`
}

type Navigation struct {
	NextEl string `json:"nextEl"`
	PrevEl string `json:"prevEl"`
}

type Pagination struct {
	El        string `json:"el"`
	Clickable bool   `json:"clickable"`
}

type Breakpoint struct {
	SlidesPerView int `json:"slidesPerView"`
	SpaceBetween  int `json:"spaceBetween,omitempty"`
}

// LightboxConfig mirrors the lightbox options object.
type LightboxConfig struct {
	Selector        string `json:"selector"`
	TouchNavigation bool   `json:"touchNavigation"`
	Loop            bool   `json:"loop"`
	AutoplayVideos  bool   `json:"autoplayVideos"`
	Zoomable        bool   `json:"zoomable"`
}

// FilterConfig mirrors the grid filter options object.
type FilterConfig struct {
	Selectors FilterSelectors `json:"selectors"`
	Animation FilterAnimation `json:"animation"`
	Load      *FilterLoad     `json:"load,omitempty"`
}

type FilterSelectors struct {
	Target string `json:"target"`
}

type FilterAnimation struct {
	Duration int    `json:"duration"`
	Effects  string `json:"effects"`
	Nudge    bool   `json:"nudge"`
}

type FilterLoad struct {
	Filter string `json:"filter"`
}

// SliderPreset binds a slider config to the element it mounts on.
type SliderPreset struct {
	Name     string
	Selector string
	Config   func(rtl bool) SliderConfig
}

func base(rtl bool) SliderConfig {
	return SliderConfig{SpaceBetween: 30, SlidesPerView: 1, Loop: true, RTL: rtl, Observer: true, ObserveParents: true}
}

var (
	PortfolioSlider = SliderPreset{
		Name:     "portfolio",
		Selector: ".portfolio-slider",
		Config: func(rtl bool) SliderConfig {
			c := base(rtl)
			c.Speed = 800
			c.Autoplay = &Autoplay{Delay: 5000}
			c.Navigation = &Navigation{NextEl: ".swiper-button-next-c", PrevEl: ".swiper-button-prev-c"}
			c.Pagination = &Pagination{El: ".swiper-pagination", Clickable: true}
			c.Breakpoints = map[int]Breakpoint{640: {SlidesPerView: 1}, 768: {SlidesPerView: 2}, 1200: {SlidesPerView: 3}}
			return c
		},
	}
	TestimonialSlider = SliderPreset{
		Name:     "testimonials",
		Selector: ".client-say-home, .client-say-home-3",
		Config: func(rtl bool) SliderConfig {
			c := base(rtl)
			c.Navigation = &Navigation{NextEl: ".swiper-button-next", PrevEl: ".swiper-button-prev"}
			return c
		},
	}
	TeamSlider = SliderPreset{
		Name:     "team",
		Selector: ".team-area-slider-home-2",
		Config: func(rtl bool) SliderConfig {
			c := base(rtl)
			c.Navigation = &Navigation{NextEl: ".swiper-button-next", PrevEl: ".swiper-button-prev"}
			c.Breakpoints = map[int]Breakpoint{0: {SlidesPerView: 1}, 768: {SlidesPerView: 2}, 991: {SlidesPerView: 3}}
			return c
		},
	}
	ClientsMarquee = SliderPreset{
		Name:     "clients",
		Selector: ".clients-slider",
		Config: func(rtl bool) SliderConfig {
			c := base(rtl)
			noTouch := false
			c.SlidesPerView = 2
			c.Speed = 3000
			c.AllowTouchMove = &noTouch
			c.Autoplay = &Autoplay{Delay: 0}
			c.Breakpoints = map[int]Breakpoint{
				500:  {SlidesPerView: 3, SpaceBetween: 40},
				768:  {SlidesPerView: 4, SpaceBetween: 50},
				1024: {SlidesPerView: 5, SpaceBetween: 80},
			}
			return c
		},
	}
	CaseStudyGallery = SliderPreset{
		Name:     "case-study-gallery",
		Selector: ".cs-gallery-slider",
		Config: func(rtl bool) SliderConfig {
			c := base(rtl)
			c.SpaceBetween = 20
			c.Autoplay = &Autoplay{Delay: 3000}
			c.Pagination = &Pagination{El: ".swiper-pagination", Clickable: true}
			c.Breakpoints = map[int]Breakpoint{640: {SlidesPerView: 2, SpaceBetween: 20}, 1024: {SlidesPerView: 3, SpaceBetween: 30}}
			return c
		},
	}
)

// Presets lists every slider mounted on a full page render.
var Presets = []SliderPreset{PortfolioSlider, TestimonialSlider, TeamSlider, ClientsMarquee, CaseStudyGallery}

// GridSelectors are the filterable grids.
var GridSelectors = []string{".project-grid-active", "#works-grid", "#blog-grid"}

// LightboxSelector matches every element that opens in the lightbox.
const LightboxSelector = ".popup-video, .popup-video-1, .glightbox"

func defaultFilter() FilterConfig {
	return FilterConfig{
		Selectors: FilterSelectors{Target: ".mix"},
		Animation: FilterAnimation{Duration: 400, Effects: "fade translateZ(-30px)"},
	}
}

func defaultLightbox() LightboxConfig {
	return LightboxConfig{
		Selector:        LightboxSelector,
		TouchNavigation: true,
		AutoplayVideos:  true,
		Zoomable:        true,
	}
}
