// Package content loads the marketing copy rendered around the quote form.
package content

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"

	"github.com/customtruckbeds/site/web"
)

// DefaultPath is the embedded document read by Load.
const DefaultPath = "content/site.yaml"

// Site is the whole page's copy.
type Site struct {
	Business Business `yaml:"business"`
	Hero     Hero     `yaml:"hero"`
	Services Services `yaml:"services"`
	Gallery  Gallery  `yaml:"gallery"`
	Contact  Contact  `yaml:"contact"`
	Footer   Footer   `yaml:"footer"`
}

type Business struct {
	Name        string   `yaml:"name"`
	LegalName   string   `yaml:"legal_name"`
	Phone       string   `yaml:"phone"`
	PhoneDigits string   `yaml:"phone_digits"`
	Email       string   `yaml:"email"`
	Address     []string `yaml:"address"`
	Coverage    string   `yaml:"coverage"`
}

type Hero struct {
	Title        string `yaml:"title"`
	Highlight    string `yaml:"highlight"`
	Tagline      string `yaml:"tagline"`
	Image        string `yaml:"image"`
	ImageAlt     string `yaml:"image_alt"`
	PrimaryCTA   string `yaml:"primary_cta"`
	SecondaryCTA string `yaml:"secondary_cta"`
}

type Service struct {
	Icon        string   `yaml:"icon"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Features    []string `yaml:"features"`
}

type Feature struct {
	Icon        string `yaml:"icon"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

type Services struct {
	Heading         string    `yaml:"heading"`
	Intro           string    `yaml:"intro"`
	Items           []Service `yaml:"items"`
	FeaturesHeading string    `yaml:"features_heading"`
	Features        []Feature `yaml:"features"`
	CTA             string    `yaml:"cta"`
}

type Project struct {
	ID          int      `yaml:"id"`
	Image       string   `yaml:"image"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Category    string   `yaml:"category"`
	Specs       []string `yaml:"specs"`
}

type Gallery struct {
	Heading    string    `yaml:"heading"`
	Intro      string    `yaml:"intro"`
	Projects   []Project `yaml:"projects"`
	CTAHeading string    `yaml:"cta_heading"`
	CTAText    string    `yaml:"cta_text"`
}

type ContactMethod struct {
	Icon        string `yaml:"icon"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Contact     string `yaml:"contact"`
	Subtext     string `yaml:"subtext"`
	Href        string `yaml:"href"`
}

type Hours struct {
	Days string `yaml:"days"`
	Time string `yaml:"time"`
}

type Contact struct {
	Heading      string            `yaml:"heading"`
	Intro        string            `yaml:"intro"`
	FormIntro    string            `yaml:"form_intro"`
	PrivacyNote  string            `yaml:"privacy_note"`
	Methods      []ContactMethod   `yaml:"methods"`
	Hours        []Hours           `yaml:"hours"`
	Placeholders map[string]string `yaml:"placeholders"`
}

type Link struct {
	Name string `yaml:"name"`
	Href string `yaml:"href"`
}

type FooterColumn struct {
	Heading string   `yaml:"heading"`
	Links   []string `yaml:"links"`
}

type Footer struct {
	Blurb         string         `yaml:"blurb"`
	Social        []Link         `yaml:"social"`
	Columns       []FooterColumn `yaml:"columns"`
	Legal         []string       `yaml:"legal"`
	CopyrightYear int            `yaml:"copyright_year"`
}

// Load parses the embedded site document.
func Load() (*Site, error) {
	return LoadFS(web.Content, DefaultPath)
}

// LoadFS parses the document at path in fsys and checks that every section
// carries copy.
func LoadFS(fsys fs.FS, path string) (*Site, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("read site content: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var site Site
	if err := dec.Decode(&site); err != nil {
		return nil, fmt.Errorf("decode site content: %w", err)
	}
	if err := site.Validate(); err != nil {
		return nil, err
	}
	return &site, nil
}

// Validate reports missing sections.
func (s *Site) Validate() error {
	var errs []error
	check := func(ok bool, section string) {
		if !ok {
			errs = append(errs, fmt.Errorf("site content: %s is empty", section))
		}
	}
	check(s.Business.Name != "", "business.name")
	check(s.Business.Phone != "", "business.phone")
	check(s.Business.Email != "", "business.email")
	check(s.Hero.Title != "", "hero.title")
	check(len(s.Services.Items) > 0, "services.items")
	check(len(s.Services.Features) > 0, "services.features")
	check(len(s.Gallery.Projects) > 0, "gallery.projects")
	check(len(s.Contact.Methods) > 0, "contact.methods")
	check(len(s.Contact.Hours) > 0, "contact.hours")
	check(len(s.Footer.Columns) > 0, "footer.columns")
	return errors.Join(errs...)
}

// Placeholder returns the input hint for a form field.
func (c Contact) Placeholder(field string) string {
	return c.Placeholders[field]
}
