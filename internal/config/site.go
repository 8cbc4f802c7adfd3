package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// SiteFile is the editorial configuration read from site.yaml.
type SiteFile struct {
	Brand           string                           `yaml:"brand"`
	DefaultLanguage string                           `yaml:"defaultLanguage"`
	Languages       []string                         `yaml:"languages"`
	BatchSize       int                              `yaml:"batchSize"`
	HomeSliderCount int                              `yaml:"homeSliderCount"`
	NotFoundPath    string                           `yaml:"notFoundPath"`
	ContactPath     string                           `yaml:"contactPath"`
	Relay           RelayIDs                         `yaml:"relay"`
	Breadcrumbs     map[string]map[string]Breadcrumb `yaml:"breadcrumbs"`
}

// RelayIDs are the fixed service and template identifiers sent with every submission.
type RelayIDs struct {
	ServiceID  string `yaml:"serviceID"`
	TemplateID string `yaml:"templateID"`
}

// Breadcrumb is the heading and trail label for a static page.
type Breadcrumb struct {
	Title string `yaml:"title"`
	Link  string `yaml:"link"`
}

// DefaultSiteFile returns the configuration used when no site.yaml exists.
func DefaultSiteFile() SiteFile {
	return SiteFile{
		Brand:           "Graphixy",
		DefaultLanguage: "ar",
		Languages:       []string{"ar", "en", "fr"},
		BatchSize:       6,
		HomeSliderCount: 4,
		NotFoundPath:    "/{lang}/pages/404.html",
		ContactPath:     "/{lang}/contact.html",
		Relay: RelayIDs{
			ServiceID:  "service_0v1ohsk",
			TemplateID: "template_pqicb7g",
		},
		Breadcrumbs: map[string]map[string]Breadcrumb{
			"ar": {
				"contact":              {Title: "تواصل معنا", Link: "تواصل معنا"},
				"privacy-policy":       {Title: "سياسة الخصوصية", Link: "سياسة الخصوصية"},
				"terms-and-conditions": {Title: "الشروط والأحكام", Link: "الشروط والأحكام"},
				"faq":                  {Title: "الأسئلة الشائعة", Link: "الأسئلة الشائعة"},
				"pricing":              {Title: "الباقات والتسعير", Link: "جدول الأسعار"},
				"nda":                  {Title: "اتفاقية عدم الإفصاح", Link: "اتفاقية عدم الإفصاح"},
			},
			"en": {
				"contact":              {Title: "Contact Us", Link: "Contact Us"},
				"privacy-policy":       {Title: "Privacy Policy", Link: "Privacy Policy"},
				"terms-and-conditions": {Title: "Terms & Conditions", Link: "Terms & Conditions"},
				"faq":                  {Title: "FAQ", Link: "FAQ"},
				"pricing":              {Title: "Plans & Pricing", Link: "Pricing"},
				"nda":                  {Title: "Non-Disclosure Agreement", Link: "NDA"},
			},
			"fr": {
				"contact":              {Title: "Contactez-nous", Link: "Contact"},
				"privacy-policy":       {Title: "Politique de confidentialité", Link: "Confidentialité"},
				"terms-and-conditions": {Title: "Conditions générales", Link: "Conditions générales"},
				"faq":                  {Title: "Questions fréquentes", Link: "FAQ"},
				"pricing":              {Title: "Offres et tarifs", Link: "Tarifs"},
				"nda":                  {Title: "Accord de confidentialité", Link: "NDA"},
			},
		},
	}
}

// LoadSiteFile reads path and overlays it on DefaultSiteFile. A missing file
// or empty path yields the defaults.
func LoadSiteFile(path string) (SiteFile, error) {
	site := DefaultSiteFile()
	if strings.TrimSpace(path) == "" {
		return site, nil
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return site, nil
	}
	if err != nil {
		return SiteFile{}, fmt.Errorf("config: unable to read %s: %w", path, err)
	}

	var overlay SiteFile
	if err := yaml.Unmarshal(raw, &overlay); err != nil {
		return SiteFile{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	site.merge(overlay)
	return site, nil
}

func (s *SiteFile) merge(o SiteFile) {
	if o.Brand != "" {
		s.Brand = o.Brand
	}
	if o.DefaultLanguage != "" {
		s.DefaultLanguage = strings.ToLower(o.DefaultLanguage)
	}
	if len(o.Languages) > 0 {
		s.Languages = make([]string, 0, len(o.Languages))
		for _, l := range o.Languages {
			s.Languages = append(s.Languages, strings.ToLower(strings.TrimSpace(l)))
		}
	}
	if o.BatchSize != 0 {
		s.BatchSize = o.BatchSize
	}
	if o.HomeSliderCount != 0 {
		s.HomeSliderCount = o.HomeSliderCount
	}
	if o.NotFoundPath != "" {
		s.NotFoundPath = o.NotFoundPath
	}
	if o.ContactPath != "" {
		s.ContactPath = o.ContactPath
	}
	if o.Relay.ServiceID != "" {
		s.Relay.ServiceID = o.Relay.ServiceID
	}
	if o.Relay.TemplateID != "" {
		s.Relay.TemplateID = o.Relay.TemplateID
	}
	for lang, pages := range o.Breadcrumbs {
		lang = strings.ToLower(lang)
		if s.Breadcrumbs[lang] == nil {
			s.Breadcrumbs[lang] = map[string]Breadcrumb{}
		}
		for key, crumb := range pages {
			s.Breadcrumbs[lang][strings.TrimSuffix(key, ".html")] = crumb
		}
	}
}

func (s SiteFile) validate() []string {
	var missing []string
	if strings.TrimSpace(s.Brand) == "" {
		missing = append(missing, "Site.Brand")
	}
	if len(s.Languages) == 0 {
		missing = append(missing, "Site.Languages")
	}
	if !slices.Contains(s.Languages, s.DefaultLanguage) {
		missing = append(missing, "Site.DefaultLanguage")
	}
	if s.BatchSize <= 0 {
		missing = append(missing, "Site.BatchSize")
	}
	if s.HomeSliderCount <= 0 {
		missing = append(missing, "Site.HomeSliderCount")
	}
	if !strings.Contains(s.NotFoundPath, "{lang}") && !strings.HasPrefix(s.NotFoundPath, "/") {
		missing = append(missing, "Site.NotFoundPath")
	}
	if s.Relay.ServiceID == "" || s.Relay.TemplateID == "" {
		missing = append(missing, "Site.Relay")
	}
	return missing
}

// NotFoundURL expands NotFoundPath for lang.
func (s SiteFile) NotFoundURL(lang string) string {
	return s.expand(s.NotFoundPath, lang)
}

// ContactURL expands ContactPath for lang. The page's #contact-form defines
// the fields submissions are validated against.
func (s SiteFile) ContactURL(lang string) string {
	return s.expand(s.ContactPath, lang)
}

func (s SiteFile) expand(path, lang string) string {
	if lang == "" {
		lang = s.DefaultLanguage
	}
	return strings.ReplaceAll(path, "{lang}", lang)
}

// Breadcrumb looks up the trail entry for a page filename, with or without
// its .html extension.
func (s SiteFile) Breadcrumb(lang, filename string) (Breadcrumb, bool) {
	pages, ok := s.Breadcrumbs[lang]
	if !ok {
		pages, ok = s.Breadcrumbs[s.DefaultLanguage]
		if !ok {
			return Breadcrumb{}, false
		}
	}
	crumb, ok := pages[strings.TrimSuffix(filename, ".html")]
	return crumb, ok
}

// SupportsLanguage reports whether lang is one of the configured languages.
func (s SiteFile) SupportsLanguage(lang string) bool {
	return slices.Contains(s.Languages, strings.ToLower(lang))
}
