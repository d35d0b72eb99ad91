package moderation

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Classifier scores a message against one vocabulary. Implementations return
// a confidence in [0,100] and whether the message matched at all. The default
// classifiers are keyword/regex sets; anything producing a confidence score
// (including an ML model client) can be plugged in via engine options.
type Classifier interface {
	Classify(content string) (confidence int, matched bool)
}

// regexClassifier matches content against a set of compiled patterns and
// reports a fixed confidence.
type regexClassifier struct {
	patterns   []*regexp.Regexp
	confidence int
}

func (c *regexClassifier) Classify(content string) (int, bool) {
	for _, p := range c.patterns {
		if p.MatchString(content) {
			return c.confidence, true
		}
	}
	return 0, false
}

// NewRegexClassifier compiles the given patterns into a Classifier that
// reports the fixed confidence on any match.
func NewRegexClassifier(confidence int, patterns ...string) (Classifier, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, raw := range patterns {
		p, err := regexp.Compile(raw)
		if err != nil {
			return nil, fmt.Errorf("compile pattern %q: %w", raw, err)
		}
		compiled = append(compiled, p)
	}
	return &regexClassifier{patterns: compiled, confidence: confidence}, nil
}

// Default vocabularies. Operators tune these per deployment through a pattern
// file (see LoadPatternFile); the built-ins cover the common trading-chat
// abuse seen in production.
var (
	defaultToxicityPatterns = []string{
		`(?i)\b(idiot|moron|stupid|loser|trash|garbage human|scum)\b`,
		`(?i)\b(kill yourself|kys|go die|hope you die)\b`,
		`(?i)\b(scam(mer)?|fraud(ster)?|ponzi|rug ?pull)\b`,
	}

	defaultPumpDumpPatterns = []string{
		`(?i)\b(to the moon|mooning|pump( it)?|pamp)\b`,
		`(?i)\b(guaranteed (profit|returns|gains)|can'?t lose|risk[- ]?free gains)\b`,
		`(?i)\b(insider (info|tip|knowledge)|whale alert|next 100x|1000x gem)\b`,
		`(?i)\b(buy (now )?before (it'?s too late|the pump)|get in (now|early) or miss out)\b`,
	}

	defaultLinkPatterns = []string{
		`(?i)(bit\.ly|tinyurl\.com|goo\.gl|t\.co|is\.gd|cutt\.ly|rb\.gy|ow\.ly)/\S+`,
		`(?i)\b(verify your (wallet|account)|claim (your|free) (airdrop|crypto|tokens))\b`,
		`(?i)\b(seed phrase|private key) (check|validation|giveaway)\b`,
		`(?i)\b(double your (crypto|coins|btc|eth)|send .{0,20} receive back)\b`,
	}
)

func mustRegexClassifier(confidence int, patterns []string) Classifier {
	c, err := NewRegexClassifier(confidence, patterns...)
	if err != nil {
		// Built-in patterns are compile-time constants; failing to compile
		// them is a programming error.
		panic(err)
	}
	return c
}

// PatternFile is the on-disk shape of operator-supplied vocabulary overrides.
// Empty sections keep the built-in set.
type PatternFile struct {
	Toxicity      []string `yaml:"toxicity"`
	PumpDump      []string `yaml:"pump_dump"`
	MaliciousLink []string `yaml:"malicious_link"`
}

// ClassifierSet bundles the three vocabulary classifiers the detector
// pipeline consults.
type ClassifierSet struct {
	Toxicity      Classifier
	PumpDump      Classifier
	MaliciousLink Classifier
}

// DefaultClassifiers returns the built-in vocabulary classifiers.
func DefaultClassifiers() ClassifierSet {
	return ClassifierSet{
		Toxicity:      mustRegexClassifier(toxicityConfidence, defaultToxicityPatterns),
		PumpDump:      mustRegexClassifier(pumpDumpConfidence, defaultPumpDumpPatterns),
		MaliciousLink: mustRegexClassifier(maliciousLinkConfidence, defaultLinkPatterns),
	}
}

// LoadPatternFile reads a YAML pattern file and returns the built-in
// classifiers with any non-empty section replaced.
func LoadPatternFile(path string) (ClassifierSet, error) {
	set := DefaultClassifiers()

	raw, err := os.ReadFile(path)
	if err != nil {
		return set, fmt.Errorf("read pattern file: %w", err)
	}

	var file PatternFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return set, fmt.Errorf("parse pattern file %s: %w", path, err)
	}

	if len(file.Toxicity) > 0 {
		c, err := NewRegexClassifier(toxicityConfidence, file.Toxicity...)
		if err != nil {
			return set, err
		}
		set.Toxicity = c
	}
	if len(file.PumpDump) > 0 {
		c, err := NewRegexClassifier(pumpDumpConfidence, file.PumpDump...)
		if err != nil {
			return set, err
		}
		set.PumpDump = c
	}
	if len(file.MaliciousLink) > 0 {
		c, err := NewRegexClassifier(maliciousLinkConfidence, file.MaliciousLink...)
		if err != nil {
			return set, err
		}
		set.MaliciousLink = c
	}
	return set, nil
}
