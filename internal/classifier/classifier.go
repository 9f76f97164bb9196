// Package classifier routes certificate categories to fixed bucket names
// using an ordered, case-insensitive substring rule list with a catch-all
// default.
package classifier

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultBucket is the catch-all bucket for categories no rule matches
const DefaultBucket = "LEGACY"

// DefaultLabel is the display label for the catch-all bucket
const DefaultLabel = "Legacy"

// Rule maps a trigger substring to a bucket. Triggers are matched
// case-insensitively against the whole category text; the first matching
// rule wins, so order is significant.
type Rule struct {
	Trigger string // substring to look for, stored lower-case
	Bucket  string // canonical bucket name, upper-case
	Label   string // display label used for generated headings
}

// DefaultRules returns the built-in rule set, in priority order. Comodo is
// routed to SECTIGO because Comodo CA was rebranded to Sectigo; certificates
// issued under either name belong in the same table.
func DefaultRules() []Rule {
	return []Rule{
		{Trigger: "sectigo", Bucket: "SECTIGO", Label: "Sectigo"},
		{Trigger: "comodo", Bucket: "SECTIGO", Label: "Sectigo"},
		{Trigger: "digicert", Bucket: "DIGICERT", Label: "DigiCert"},
		{Trigger: "let's encrypt", Bucket: "LETSENCRYPT", Label: "Let's Encrypt"},
		{Trigger: "lets encrypt", Bucket: "LETSENCRYPT", Label: "Let's Encrypt"},
		{Trigger: "isrg", Bucket: "LETSENCRYPT", Label: "Let's Encrypt"},
		{Trigger: "globalsign", Bucket: "GLOBALSIGN", Label: "GlobalSign"},
		{Trigger: "godaddy", Bucket: "GODADDY", Label: "GoDaddy"},
		{Trigger: "go daddy", Bucket: "GODADDY", Label: "GoDaddy"},
		{Trigger: "starfield", Bucket: "GODADDY", Label: "GoDaddy"},
		{Trigger: "amazon", Bucket: "AMAZON", Label: "Amazon"},
		{Trigger: "internal", Bucket: "INTERNAL", Label: "Internal CA"},
		{Trigger: "private", Bucket: "INTERNAL", Label: "Internal CA"},
	}
}

// Classifier routes free-text categories to buckets using an ordered
// substring rule list. It is a pure function of its rule set: no state, no
// I/O, and repeated calls with the same input always return the same bucket.
type Classifier struct {
	rules []Rule
}

// New creates a Classifier. With no rules it uses the built-in set.
func New(rules ...Rule) *Classifier {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	normalized := make([]Rule, 0, len(rules))
	for _, r := range rules {
		r.Trigger = strings.ToLower(r.Trigger)
		r.Bucket = strings.ToUpper(r.Bucket)
		if r.Label == "" {
			r.Label = r.Bucket
		}
		normalized = append(normalized, r)
	}
	return &Classifier{rules: normalized}
}

// Classify maps a record's free-text category to a bucket name. The input is
// lower-cased and tested against each rule's trigger in order; the first
// match wins. Categories matching no rule fall into DefaultBucket.
func (c *Classifier) Classify(category string) string {
	lower := strings.ToLower(category)
	for _, r := range c.rules {
		if strings.Contains(lower, r.Trigger) {
			return r.Bucket
		}
	}
	return DefaultBucket
}

// Label returns the display label for a bucket, used when the merge has to
// generate a fresh heading. Unknown buckets get their own name back.
func (c *Classifier) Label(bucket string) string {
	bucket = strings.ToUpper(bucket)
	if bucket == DefaultBucket {
		return DefaultLabel
	}
	for _, r := range c.rules {
		if r.Bucket == bucket {
			return r.Label
		}
	}
	return bucket
}

// ruleFile is the YAML document shape for an external rule file
type ruleFile struct {
	Rules []ruleEntry `yaml:"rules"`
}

type ruleEntry struct {
	Trigger string `yaml:"trigger"`
	Bucket  string `yaml:"bucket"`
	Label   string `yaml:"label"`
}

// LoadRulesFile reads an ordered rule list from a YAML file:
//
//	rules:
//	  - trigger: sectigo
//	    bucket: SECTIGO
//	    label: Sectigo
//
// The file replaces the built-in rules entirely; the catch-all default
// bucket is not configurable.
func LoadRulesFile(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	var doc ruleFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse rules file: %w", err)
	}

	if len(doc.Rules) == 0 {
		return nil, fmt.Errorf("rules file %s contains no rules", path)
	}

	rules := make([]Rule, 0, len(doc.Rules))
	for i, e := range doc.Rules {
		if e.Trigger == "" || e.Bucket == "" {
			return nil, fmt.Errorf("rule %d: trigger and bucket are required", i)
		}
		rules = append(rules, Rule{Trigger: e.Trigger, Bucket: e.Bucket, Label: e.Label})
	}
	return rules, nil
}
