package campaign

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/eventmail/pkg/apiclient"
)

//go:embed presets.yaml
var presetsYAML []byte

// Preset is a built-in template shipped with the console.
type Preset struct {
	Key          string                 `yaml:"key"`
	Name         string                 `yaml:"name"`
	AttendeeType apiclient.AttendeeType `yaml:"attendee_type"`
	Subject      string                 `yaml:"subject"`
	Body         string                 `yaml:"body"`
}

// Content returns the subject and body pair.
func (p Preset) Content() apiclient.TemplateContent {
	return apiclient.TemplateContent{Subject: p.Subject, Body: p.Body}
}

// Template returns the preset as an active template without an ID.
func (p Preset) Template() apiclient.EmailTemplate {
	return apiclient.EmailTemplate{
		Name:         p.Name,
		Subject:      p.Subject,
		Body:         p.Body,
		AttendeeType: p.AttendeeType,
		IsActive:     true,
	}
}

var loadPresets = sync.OnceValues(func() ([]Preset, error) {
	return parsePresets(presetsYAML)
})

func parsePresets(b []byte) ([]Preset, error) {
	var out []Preset
	if err := yaml.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("campaign: parse presets: %w", err)
	}
	for i, p := range out {
		if p.Key == "" || p.Subject == "" || p.Body == "" {
			return nil, fmt.Errorf("campaign: preset %d is incomplete", i)
		}
		if !p.AttendeeType.Valid() {
			return nil, fmt.Errorf("campaign: preset %q has unknown attendee type %q", p.Key, p.AttendeeType)
		}
	}
	return out, nil
}

// Presets returns the built-in templates. It panics if the embedded file is
// malformed, which is caught by tests.
func Presets() []Preset {
	p, err := loadPresets()
	if err != nil {
		panic(err)
	}
	return p
}

// LookupPreset finds a preset by key.
func LookupPreset(key string) (Preset, bool) {
	for _, p := range Presets() {
		if p.Key == key {
			return p, true
		}
	}
	return Preset{}, false
}
