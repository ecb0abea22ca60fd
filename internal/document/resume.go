// Package document is the résumé payload. Content is never mutated by the
// fitting engine; only the constraints change.
package document

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gompdf/pagefit/internal/res"
)

// ErrInvalidDocument reports a document that cannot be rendered.
var ErrInvalidDocument = errors.New("invalid document")

// Bullet is one line of a role. SubSection, when set, is printed as a lead-in label.
type Bullet struct {
	Text       string `yaml:"text" json:"text"`
	SubSection string `yaml:"subSection,omitempty" json:"subSection,omitempty"`
}

type Role struct {
	Title     string   `yaml:"title" json:"title"`
	StartDate string   `yaml:"startDate" json:"startDate"`
	EndDate   string   `yaml:"endDate" json:"endDate"`
	Bullets   []Bullet `yaml:"bullets" json:"bullets"`
}

type Experience struct {
	Company  string `yaml:"company" json:"company"`
	Location string `yaml:"location" json:"location"`
	Roles    []Role `yaml:"roles" json:"roles"`
}

type Education struct {
	Degree string `yaml:"degree" json:"degree"`
	School string `yaml:"school" json:"school"`
	Year   string `yaml:"year" json:"year"`
}

type Link struct {
	Label string `yaml:"label" json:"label"`
	URL   string `yaml:"url" json:"url"`
}

type Contact struct {
	Email    string `yaml:"email" json:"email"`
	Phone    string `yaml:"phone" json:"phone"`
	Location string `yaml:"location" json:"location"`
	Links    []Link `yaml:"links" json:"links"`
}

type SkillGroup struct {
	Category string   `yaml:"category" json:"category"`
	Items    []string `yaml:"items" json:"items"`
}

type Project struct {
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
}

// Resume is the whole document.
type Resume struct {
	Name           string       `yaml:"name" json:"name"`
	Contact        Contact      `yaml:"contact" json:"contact"`
	Experiences    []Experience `yaml:"experiences" json:"experiences"`
	Education      []Education  `yaml:"education" json:"education"`
	Skills         []SkillGroup `yaml:"skills" json:"skills"`
	Projects       []Project    `yaml:"projects" json:"projects"`
	Certifications []string     `yaml:"certifications,omitempty" json:"certifications,omitempty"`
}

// Parse decodes a YAML résumé. Unknown fields are rejected.
func Parse(r io.Reader) (*Resume, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc Resume
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidDocument)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Load reads and parses a résumé file.
func Load(path string) (*Resume, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	defer f.Close()

	doc, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Validate checks the fields the template relies on.
func (r *Resume) Validate() error {
	var problems []string
	if strings.TrimSpace(r.Name) == "" {
		problems = append(problems, "name is required")
	}
	for i, exp := range r.Experiences {
		if strings.TrimSpace(exp.Company) == "" {
			problems = append(problems, fmt.Sprintf("experiences[%d]: company is required", i))
		}
		for j, role := range exp.Roles {
			if strings.TrimSpace(role.Title) == "" {
				problems = append(problems, fmt.Sprintf("experiences[%d].roles[%d]: title is required", i, j))
			}
		}
	}
	for i, edu := range r.Education {
		if strings.TrimSpace(edu.Degree) == "" {
			problems = append(problems, fmt.Sprintf("education[%d]: degree is required", i))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidDocument, strings.Join(problems, "; "))
	}
	return nil
}

// FirstName and LastName split Name on the first space.
func (r *Resume) FirstName() string {
	first, _, _ := strings.Cut(strings.TrimSpace(r.Name), " ")
	return first
}

func (r *Resume) LastName() string {
	_, rest, _ := strings.Cut(strings.TrimSpace(r.Name), " ")
	return strings.TrimSpace(rest)
}

// WebsiteLink returns the link labelled website or portfolio, and the rest.
func (c Contact) WebsiteLink() (site *Link, others []Link) {
	for i := range c.Links {
		label := strings.ToLower(c.Links[i].Label)
		if site == nil && (label == "website" || label == "portfolio") {
			l := c.Links[i]
			site = &l
			continue
		}
		others = append(others, c.Links[i])
	}
	return site, others
}

//go:embed sample.yaml
var sampleYAML []byte

// Sample returns the built-in example résumé. Each call returns a fresh copy.
func Sample() *Resume {
	doc, err := Parse(bytes.NewReader(sampleYAML))
	if err != nil {
		panic(fmt.Sprintf("document: bad embedded sample: %v", err))
	}
	return doc
}

// SampleYAML returns the embedded sample source.
func SampleYAML() []byte {
	return bytes.Clone(sampleYAML)
}

// Open loads a résumé through loader, so location may be a path, an http(s)
// URL or a data: URL.
func Open(ctx context.Context, loader *res.Loader, location string) (*Resume, error) {
	r, err := loader.Load(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	if r.Kind == res.KindHTML {
		return nil, fmt.Errorf("%w: %s is HTML, not a résumé document", ErrInvalidDocument, location)
	}
	doc, err := Parse(r.Reader())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", location, err)
	}
	return doc, nil
}
