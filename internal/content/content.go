// Package content defines the read-only records decoded from the site
// datasets and the pagination cursor the grids advance.
package content

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mustafabch/website/internal/links"
)

// Dataset file names.
const (
	BlogFile         = "blog.json"
	WorksFile        = "works.json"
	CaseStudiesFile  = "case-studies.json"
	TestimonialsFile = "testimonials.json"
	ClientsFile      = "clients.json"
)

// Scalar is a JSON value that may arrive as a string or a number and is
// compared by its string form.
type Scalar string

// UnmarshalJSON accepts strings, numbers and null.
func (s *Scalar) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*s = Scalar(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("content: scalar must be string or number: %w", err)
	}
	*s = Scalar(n.String())
	return nil
}

func (s Scalar) String() string { return string(s) }

// List is a JSON array of scalars read as text. Non-scalar elements are
// dropped, a lone string or number becomes a one-element list, and any other
// value decodes to nil.
type List []string

// UnmarshalJSON never fails on well-formed JSON.
func (l *List) UnmarshalJSON(b []byte) error {
	var v any
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return err
	}
	*l = nil
	switch v := v.(type) {
	case []any:
		out := make(List, 0, len(v))
		for _, el := range v {
			if s, ok := scalarText(el); ok {
				out = append(out, s)
			}
		}
		*l = out
	default:
		if s, ok := scalarText(v); ok && s != "" {
			*l = List{s}
		}
	}
	return nil
}

func scalarText(v any) (string, bool) {
	switch v := v.(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case bool:
		return fmt.Sprint(v), true
	}
	return "", false
}

// ID identifies an entity within its dataset.
type ID = Scalar

// Fields is the raw key/value view of a record, used for attribute binding.
type Fields map[string]any

// String renders a scalar field as text. Missing keys, nulls, false and empty
// strings yield "".
func (f Fields) String(key string) string {
	switch v := f[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		if v {
			return "true"
		}
	}
	return ""
}

// Strings returns the elements of an array field as text, or nil when key is
// not an array.
func (f Fields) Strings(key string) ([]string, bool) {
	arr, ok := f[key].([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(arr))
	for _, v := range arr {
		out = append(out, Fields{"v": v}.String("v"))
	}
	return out, true
}

// Present reports whether key holds a truthy value: non-empty strings,
// non-zero numbers, true, and any array or object.
func (f Fields) Present(key string) bool {
	switch v := f[key].(type) {
	case nil:
		return false
	case string:
		return v != ""
	case json.Number:
		n, err := v.Float64()
		return err != nil || n != 0
	case float64:
		return v != 0
	case bool:
		return v
	default:
		return true
	}
}

func decodeFields(b []byte) (Fields, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var f Fields
	if err := dec.Decode(&f); err != nil {
		return nil, err
	}
	return f, nil
}

// Entity is the common view over records that own a detail page.
type Entity interface {
	EntityID() string
	EntityTitle() string
	EntityCategory() string
	EntityLink() string
	EntityImage() string
	Raw() Fields
}

// BlogPost is one entry of blog.json.
type BlogPost struct {
	ID       ID       `json:"id"`
	Title    string   `json:"title"`
	Category string   `json:"category"`
	Date     string   `json:"date"`
	Excerpt  string   `json:"excerpt"`
	Image    string   `json:"image"`
	ReadTime Scalar   `json:"read-time"`
	Link     string   `json:"link"`
	Body     string   `json:"body"`
	Tags     List     `json:"tags"`
	Fields   Fields   `json:"-"`
}

func (p *BlogPost) UnmarshalJSON(b []byte) error {
	type alias BlogPost
	var a alias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	fields, err := decodeFields(b)
	if err != nil {
		return err
	}
	a.Fields = fields
	*p = BlogPost(a)
	return nil
}

func (p BlogPost) EntityID() string       { return p.ID.String() }
func (p BlogPost) EntityTitle() string    { return p.Title }
func (p BlogPost) EntityCategory() string { return p.Category }
func (p BlogPost) EntityLink() string     { return p.Link }
func (p BlogPost) EntityImage() string    { return p.Image }
func (p BlogPost) Raw() Fields            { return p.Fields }

// IsFeatured reports whether the record carries "featured": true. Any other
// value, including the string "true", does not count.
func (p BlogPost) IsFeatured() bool {
	v, ok := p.Fields["featured"].(bool)
	return ok && v
}

// CategoryClass is the grid-filter class derived from the post's category.
func (p BlogPost) CategoryClass() string { return "cat-" + links.Slugify(p.Category) }

// Work is one entry of works.json.
type Work struct {
	ID           ID     `json:"id"`
	Title        string `json:"title"`
	Category     string `json:"category"`
	Filter       string `json:"filter"`
	Image        string `json:"image"`
	HomeImage    string `json:"home-image"`
	Link         string `json:"link"`
	Client       Scalar `json:"client"`
	Year         Scalar `json:"year"`
	Technologies List   `json:"technologies"`
	Gallery      List   `json:"gallery"`
	Fields       Fields `json:"-"`
}

func (w *Work) UnmarshalJSON(b []byte) error {
	type alias Work
	var a alias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	fields, err := decodeFields(b)
	if err != nil {
		return err
	}
	a.Fields = fields
	*w = Work(a)
	return nil
}

func (w Work) EntityID() string       { return w.ID.String() }
func (w Work) EntityTitle() string    { return w.Title }
func (w Work) EntityCategory() string { return w.Category }
func (w Work) EntityLink() string     { return w.Link }
func (w Work) EntityImage() string    { return w.Image }
func (w Work) Raw() Fields            { return w.Fields }

// FilterClass is the grid-filter class derived from the work's filter.
func (w Work) FilterClass() string { return "cat-" + links.Slugify(w.Filter) }

// IsVideo reports whether the work's filter marks it as motion or video.
func (w Work) IsVideo() bool {
	class := w.FilterClass()
	return strings.Contains(class, "motion") || strings.Contains(class, "video")
}

// CaseStudy is one entry of case-studies.json.
type CaseStudy struct {
	ID       ID     `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category"`
	Excerpt  string `json:"excerpt"`
	Image    string `json:"image"`
	Client   Scalar `json:"client"`
	Gallery  List   `json:"gallery"`
	Link     string `json:"link"`
	Fields   Fields `json:"-"`
}

func (c *CaseStudy) UnmarshalJSON(b []byte) error {
	type alias CaseStudy
	var a alias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	fields, err := decodeFields(b)
	if err != nil {
		return err
	}
	a.Fields = fields
	*c = CaseStudy(a)
	return nil
}

func (c CaseStudy) EntityID() string       { return c.ID.String() }
func (c CaseStudy) EntityTitle() string    { return c.Title }
func (c CaseStudy) EntityCategory() string { return c.Category }
func (c CaseStudy) EntityLink() string     { return c.Link }
func (c CaseStudy) EntityImage() string    { return c.Image }
func (c CaseStudy) Raw() Fields            { return c.Fields }

// Testimonial is one entry of testimonials.json.
type Testimonial struct {
	Content string `json:"content"`
	Name    string `json:"name"`
	Role    string `json:"role"`
}

// Client is one entry of clients.json.
type Client struct {
	Name string `json:"name"`
	Logo string `json:"logo"`
	URL  string `json:"url"`
}

// Decode converts raw dataset records into T. Records that fail to decode are
// skipped and reported together in the returned error; the remaining items are
// returned either way.
func Decode[T any](records []json.RawMessage) ([]T, error) {
	out := make([]T, 0, len(records))
	var errs []error
	for i, rec := range records {
		var v T
		if err := json.Unmarshal(rec, &v); err != nil {
			errs = append(errs, fmt.Errorf("content: record %d: %w", i, err))
			continue
		}
		out = append(out, v)
	}
	return out, errors.Join(errs...)
}

// FindByID returns the entity whose id equals id by string form and its index.
func FindByID[T Entity](items []T, id string) (T, int, bool) {
	for i, it := range items {
		if it.EntityID() == id {
			return it, i, true
		}
	}
	var zero T
	return zero, -1, false
}

// Cursor tracks how many items of a collection have been rendered.
type Cursor struct {
	Index  int
	Loaded bool
}

// Reset rewinds the cursor to the first batch.
func (c *Cursor) Reset() {
	c.Index = 0
	c.Loaded = false
}
