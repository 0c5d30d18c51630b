// Copyright 2025 Paul David Fisher
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package search

import "errors"

// Config holds the query engine's tunables.
type Config struct {
	// MaxResults is the default result cap when a request does not set
	// its own limit.
	// Default: 20
	MaxResults int

	// FuzzyThreshold is the minimum sequence similarity (0..1] for a
	// fuzzy match.
	// Default: 0.8
	FuzzyThreshold float64

	// TrigramDiceFloor is the minimum trigram Dice coefficient a
	// candidate phrase must share with the query before the expensive
	// similarity computation runs.
	// Default: 0.3
	TrigramDiceFloor float64

	// FuzzyLengthSlack widens the candidate phrase word-length range to
	// [queryLen-slack, queryLen+slack].
	// Default: 1
	FuzzyLengthSlack int

	// MaxProximityDistance is the default span bound (inclusive) when a
	// proximity request does not set its own.
	// Default: 10
	MaxProximityDistance uint32

	// ContextTokens is the width, in tokens, of the raw-text excerpt
	// built around each match.
	// Default: 20
	ContextTokens int

	// ContextMaxChars caps the excerpt length in bytes; excerpts are
	// truncated rune-safely.
	// Default: 200
	ContextMaxChars int
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithMaxResults sets the default result cap.
func WithMaxResults(n int) ConfigOption {
	return func(c *Config) {
		c.MaxResults = n
	}
}

// WithFuzzyThreshold sets the minimum fuzzy similarity.
func WithFuzzyThreshold(threshold float64) ConfigOption {
	return func(c *Config) {
		c.FuzzyThreshold = threshold
	}
}

// WithTrigramDiceFloor sets the trigram prefilter floor.
func WithTrigramDiceFloor(floor float64) ConfigOption {
	return func(c *Config) {
		c.TrigramDiceFloor = floor
	}
}

// WithFuzzyLengthSlack sets the fuzzy candidate length slack.
func WithFuzzyLengthSlack(slack int) ConfigOption {
	return func(c *Config) {
		c.FuzzyLengthSlack = slack
	}
}

// WithMaxProximityDistance sets the default proximity span bound.
func WithMaxProximityDistance(distance uint32) ConfigOption {
	return func(c *Config) {
		c.MaxProximityDistance = distance
	}
}

// WithContextTokens sets the excerpt width in tokens.
func WithContextTokens(n int) ConfigOption {
	return func(c *Config) {
		c.ContextTokens = n
	}
}

// WithContextMaxChars sets the excerpt length cap.
func WithContextMaxChars(n int) ConfigOption {
	return func(c *Config) {
		c.ContextMaxChars = n
	}
}

// DefaultConfig returns a Config with the canonical defaults.
func DefaultConfig() *Config {
	return &Config{
		MaxResults:           20,
		FuzzyThreshold:       0.8,
		TrigramDiceFloor:     0.3,
		FuzzyLengthSlack:     1,
		MaxProximityDistance: 10,
		ContextTokens:        20,
		ContextMaxChars:      200,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Validate checks that the configuration is valid and complete.
func (c *Config) Validate() error {
	if c.MaxResults <= 0 {
		return errors.New("search config: MaxResults must be positive")
	}
	if c.FuzzyThreshold <= 0 || c.FuzzyThreshold > 1 {
		return errors.New("search config: FuzzyThreshold must be in (0, 1]")
	}
	if c.TrigramDiceFloor <= 0 || c.TrigramDiceFloor > 1 {
		return errors.New("search config: TrigramDiceFloor must be in (0, 1]")
	}
	if c.FuzzyLengthSlack < 0 {
		return errors.New("search config: FuzzyLengthSlack must not be negative")
	}
	if c.ContextTokens <= 0 {
		return errors.New("search config: ContextTokens must be positive")
	}
	if c.ContextMaxChars <= 0 {
		return errors.New("search config: ContextMaxChars must be positive")
	}
	return nil
}
