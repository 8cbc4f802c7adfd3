package testutil

import (
	"testing/fstest"
)

const BlogJSON = `[
  {"id": 1, "title": "Brand Strategy 101", "category": "Branding", "date": "15 ديسمبر 2025", "excerpt": "Why brands matter", "image": "/img/b1.jpg", "read-time": "5 min", "link": "/ar/blog/blog-details.html", "body": "## Intro\n\nHello **world**<script>alert(1)</script>"},
  {"id": 2, "title": "Motion Trends", "category": "Motion", "date": "3 مايو 2024", "excerpt": "Moving pictures", "image": "/img/b2.jpg", "read-time": "4 min", "featured": true, "link": "/ar/blog/blog-details.html"},
  {"id": 3, "title": "Logo Design Myths", "category": "Branding", "date": "1 يناير 2025", "excerpt": "Myths", "image": "/img/b3.jpg", "read-time": "3 min", "link": "/ar/blog/blog-details.html?id=3"},
  {"id": 4, "title": "Color Theory", "category": "", "date": "غير معروف", "excerpt": "Colors", "image": "/img/b4.jpg", "read-time": "6 min", "link": "/ar/blog/blog-details.html"},
  {"id": 5, "title": "Typography", "category": "Design", "date": "20 فبراير 2025", "excerpt": "Type", "image": "/img/b5.jpg", "read-time": "2 min"},
  {"id": 6, "title": "Grid Systems", "category": "Design", "date": "7 مارس 2025", "excerpt": "Grids", "image": "/img/b6.jpg", "read-time": "7 min", "link": "/ar/blog/blog-details.html"},
  {"id": 7, "title": "Brand Voice", "category": "Branding", "date": "9 يونيو 2025", "excerpt": "Voice", "image": "/img/b7.jpg", "read-time": "5 min", "link": "/ar/blog/blog-details.html"}
]`

const WorksJSON = `[
  {"id": 1, "title": "Nova Identity", "category": "Branding", "filter": "Brand Identity", "image": "/img/w1.jpg", "home-image": "/img/w1-home.jpg", "link": "/ar/portfolio/project-details.html", "client": "Nova", "year": 2024, "technologies": ["Illustrator", "Figma"], "gallery": ["/img/g1.jpg", "/img/g2.jpg"], "tools": ["Pen", "Paper"]},
  {"id": 2, "title": "Pulse Reel", "category": "Motion", "filter": "Motion Graphics", "image": "/img/w2.jpg", "link": "/ar/portfolio/project-details.html"},
  {"id": 3, "title": "Orbit App", "category": "UI", "filter": "UI UX", "image": "", "link": "/ar/portfolio/project-details.html"},
  {"id": 4, "title": "Dune Pack", "category": "Branding", "filter": "Packaging", "image": "/img/w4.jpg", "link": "/ar/portfolio/project-details.html"},
  {"id": 5, "title": "Echo Promo", "category": "Video", "filter": "Video", "image": "/img/w5.jpg", "link": "/ar/portfolio/project-details.html"}
]`

const CaseStudiesJSON = `[
  {"id": 1, "title": "Scaling Nova", "category": "Branding", "excerpt": "From zero", "image": "/img/c1.jpg", "client": "Nova", "link": "/ar/case-study/case-study.html"},
  {"id": 2, "title": "Pulse Growth", "category": "Branding", "excerpt": "Growth story", "image": "/img/c2.jpg", "client": "Pulse", "link": "/ar/case-study/case-study.html"},
  {"id": 3, "title": "Orbit Launch", "category": "Branding", "excerpt": "Launch", "image": "/img/c3.jpg", "client": "Orbit", "link": "/ar/case-study/case-study.html"},
  {"id": 4, "title": "Solo Story", "category": "Product", "excerpt": "Alone", "image": "/img/c4.jpg", "client": "Solo", "link": "/ar/case-study/case-study.html"}
]`

const TestimonialsJSON = `[
  {"content": "Great team", "name": "Sara", "role": "CEO"},
  {"content": "<b>Fast</b> delivery", "name": "Omar", "role": "CTO"}
]`

const ClientsJSON = `[
  {"name": "Acme", "logo": "/img/acme.png", "url": "https://acme.example.com"},
  {"name": "Globex", "logo": "/img/globex.png"}
]`

// SiteFS returns a site tree carrying every dataset. Extra entries are merged
// over the defaults.
func SiteFS(extra fstest.MapFS) fstest.MapFS {
	fsys := fstest.MapFS{
		"data/blog.json":         {Data: []byte(BlogJSON)},
		"data/works.json":        {Data: []byte(WorksJSON)},
		"data/case-studies.json": {Data: []byte(CaseStudiesJSON)},
		"data/testimonials.json": {Data: []byte(TestimonialsJSON)},
		"data/clients.json":      {Data: []byte(ClientsJSON)},
	}
	for name, f := range extra {
		if f == nil {
			delete(fsys, name)
			continue
		}
		fsys[name] = f
	}
	return fsys
}
