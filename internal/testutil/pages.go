package testutil

import "testing/fstest"

const HeaderComponent = `<header class="header-main">
<nav class="main-menu"><ul>
  <li><a href="/ar/index.html">الرئيسية</a></li>
  <li><a href="/ar/blog/blog.html">المدونة</a></li>
  <li><a href="/ar/contact.html">تواصل</a></li>
</ul></nav>
<button class="menu-bar-btn"></button>
<a data-lang="en" href="#">EN</a>
<script src="/assets/js/header.js" defer></script>
</header>`

const BreadcrumbComponent = `<section class="breadcrumb"><h1 id="breadcrumb-page-title">-</h1><a id="breadcrumb-current-link" href="/">-</a></section>`

const HomePage = `<!DOCTYPE html><html><head><title>Home</title></head><body>
<div class="loader-wrapper"></div>
<div data-component="/components/header.html"></div>
<div data-component="/components/missing.html"></div>
<div class="swiper portfolio-slider"><div class="swiper-wrapper" id="home-portfolio-wrapper"></div></div>
<section data-dynamic="testimonials"><div class="swiper client-say-home"><div class="swiper-wrapper"></div></div></section>
<section data-dynamic="clients"><div class="swiper clients-slider"><div class="swiper-wrapper"></div></div></section>
<h2 class="split-collab">Hello</h2>
</body></html>`

const BlogPage = `<!DOCTYPE html><html><head><title>Blog</title></head><body>
<div data-component="/components/header.html"></div>
<div id="featured-post-container"></div>
<input id="blog-search-input" type="search">
<div class="row" id="blog-grid"></div>
<a href="#" id="load-more-blog" class="load-more">more</a>
</body></html>`

const ProjectPage = `<!DOCTYPE html><html><head><title>Project</title></head><body>
<h1 data-bind="title"></h1>
<a id="nav-prev-link" href="#"></a><a id="nav-next-link" href="#"></a>
<div id="project-gallery-container"></div>
</body></html>`

const ContactPage = `<!DOCTYPE html><html><head><title>Contact</title></head><body>
<div data-component="/components/breadcrumb.html"></div>
<form id="contact-form">
  <input class="form-control" name="user_name" required>
  <input class="form-control" name="user_email" required>
  <input class="form-control" name="user_phone">
  <textarea class="form-control" name="message" required></textarea>
  <button id="submit-btn" type="submit">Send</button>
</form>
<div id="form-feedback" style="display: none;"></div>
</body></html>`

// SitePages returns SiteFS plus a small page and component tree.
func SitePages(extra fstest.MapFS) fstest.MapFS {
	pages := fstest.MapFS{
		"components/header.html":            {Data: []byte(HeaderComponent)},
		"components/breadcrumb.html":        {Data: []byte(BreadcrumbComponent)},
		"ar/index.html":                     {Data: []byte(HomePage)},
		"ar/blog/blog.html":                 {Data: []byte(BlogPage)},
		"ar/portfolio/project-details.html": {Data: []byte(ProjectPage)},
		"ar/contact.html":                   {Data: []byte(ContactPage)},
		"en/contact.html":                   {Data: []byte(ContactPage)},
		"ar/pages/404.html":                 {Data: []byte(`<!DOCTYPE html><html><body><h1>404</h1></body></html>`)},
		"assets/css/site.css":               {Data: []byte("body{}")},
	}
	for name, f := range extra {
		pages[name] = f
	}
	return SiteFS(pages)
}
