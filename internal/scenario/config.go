// Package scenario builds the initial simulation setup: states, districts,
// parties, and the event catalog. The default scenario is the full 50-state
// USA; YAML files can override any of it.
package scenario

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/talgya/statehouse/internal/politics"
)

// Config describes an initial scenario.
type Config struct {
	Seed       int64 `yaml:"seed"`
	StartYear  int   `yaml:"start_year"`
	StartMonth int   `yaml:"start_month"`

	HouseSize  int `yaml:"house_size"`
	SenateSize int `yaml:"senate_size"`

	// OpinionDecay is the per-month fraction opinion moves toward neutral.
	OpinionDecay float64 `yaml:"opinion_decay"`

	PresidentName  string          `yaml:"president_name"`
	PresidentParty politics.PartyID `yaml:"president_party"`

	Parties []PartyConfig `yaml:"parties"`
	States  []StateConfig `yaml:"states"`
	Events  []EventConfig `yaml:"events"`
}

// PartyConfig seeds one national party.
type PartyConfig struct {
	ID       politics.PartyID            `yaml:"id"`
	Approval float64                     `yaml:"approval"`
	Treasury float64                     `yaml:"treasury"`
	Platform map[politics.Issue]float64  `yaml:"platform"`
}

// StateConfig seeds one state. Lean is -1..1 where positive favors the
// lexicographically-first major party (Democrat in the default scenario).
type StateConfig struct {
	Name       string  `yaml:"name"`
	Abbrev     string  `yaml:"abbrev"`
	Population int64   `yaml:"population"`
	GDP        float64 `yaml:"gdp"`
	Districts  int     `yaml:"districts"`
	Lean       float64 `yaml:"lean"`
}

// TriggerKind selects how an event fires.
type TriggerKind string

const (
	// TriggerRandom events enter the weighted once-per-turn draw.
	TriggerRandom TriggerKind = "random"
	// TriggerDeficit fires when the federal deficit crosses Threshold.
	TriggerDeficit TriggerKind = "deficit"
	// TriggerOpinion fires when national opinion on Issue drops below Threshold.
	TriggerOpinion TriggerKind = "opinion"
	// TriggerScheduled fires on a calendar match (Month, and YearMod if set).
	TriggerScheduled TriggerKind = "scheduled"
)

// EventConfig seeds one catalog event.
type EventConfig struct {
	Key         string      `yaml:"key" json:"key"`
	Description string      `yaml:"description" json:"description"`
	Weight      float64     `yaml:"weight" json:"weight"`
	OneShot     bool        `yaml:"one_shot" json:"one_shot"`
	Cooldown    int         `yaml:"cooldown" json:"cooldown"` // turns between recurrences

	Trigger   TriggerKind    `yaml:"trigger" json:"trigger"`
	Threshold float64        `yaml:"threshold" json:"threshold"`
	Issue     politics.Issue `yaml:"issue" json:"issue"`
	Month     int            `yaml:"month" json:"month"`
	YearMod   int            `yaml:"year_mod" json:"year_mod"`

	Effect politics.EffectVector `yaml:"effect" json:"effect"`
}

// Load reads a scenario config from a YAML file. Missing fields fall back
// to the default scenario values.
func Load(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read scenario: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse scenario: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration invariants that must hold before any
// turn runs. A violation here is fatal setup error territory.
func (c Config) Validate() error {
	if c.StartMonth < 1 || c.StartMonth > 12 {
		return fmt.Errorf("start_month %d outside 1..12", c.StartMonth)
	}
	if len(c.Parties) < 2 {
		return fmt.Errorf("at least two parties required, got %d", len(c.Parties))
	}
	seen := make(map[politics.PartyID]bool, len(c.Parties))
	for _, p := range c.Parties {
		if p.ID == "" {
			return fmt.Errorf("party with empty id")
		}
		if seen[p.ID] {
			return fmt.Errorf("duplicate party %q", p.ID)
		}
		seen[p.ID] = true
	}

	districts := 0
	names := make(map[string]bool, len(c.States))
	for _, st := range c.States {
		if st.Name == "" {
			return fmt.Errorf("state with empty name")
		}
		if names[st.Name] {
			return fmt.Errorf("duplicate state %q", st.Name)
		}
		names[st.Name] = true
		if st.Districts < 1 {
			return fmt.Errorf("state %q has %d districts, need at least 1", st.Name, st.Districts)
		}
		districts += st.Districts
	}
	if districts != c.HouseSize {
		return fmt.Errorf("districts sum to %d, house size is %d", districts, c.HouseSize)
	}
	if got := 2 * len(c.States); got != c.SenateSize {
		return fmt.Errorf("senate seats sum to %d, senate size is %d", got, c.SenateSize)
	}
	if c.OpinionDecay < 0 || c.OpinionDecay > 1 {
		return fmt.Errorf("opinion_decay %v outside 0..1", c.OpinionDecay)
	}
	for _, ev := range c.Events {
		if ev.Key == "" {
			return fmt.Errorf("event with empty key")
		}
		switch ev.Trigger {
		case TriggerRandom, TriggerDeficit, TriggerOpinion, TriggerScheduled:
		default:
			return fmt.Errorf("event %q has unknown trigger %q", ev.Key, ev.Trigger)
		}
		if ev.Trigger == TriggerScheduled && (ev.Month < 1 || ev.Month > 12) {
			return fmt.Errorf("event %q scheduled month %d outside 1..12", ev.Key, ev.Month)
		}
	}
	return nil
}
