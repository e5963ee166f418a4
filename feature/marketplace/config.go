package marketplace

import "strings"

// Config holds configuration for reading marketplace submissions.
type Config struct {
	// Results is the batch-results export: a local path or an s3://bucket/key URI.
	Results string `mapstructure:"results" default:""`
	// Nicknames is an optional YAML file mapping HIT nicknames to HIT IDs.
	Nicknames string `mapstructure:"nicknames" default:""`
	// CompletionKeyField is the answer field holding the completion key.
	CompletionKeyField string `mapstructure:"completion_key_field" default:"tversky_completion_key"`
	// Statuses is a comma-separated list of accepted assignment statuses. Empty accepts all.
	Statuses string `mapstructure:"statuses" default:""`
}

// AcceptedStatuses returns the normalized status filter.
func (c Config) AcceptedStatuses() []string {
	var out []string
	for _, s := range strings.Split(c.Statuses, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, strings.ToLower(s))
		}
	}
	return out
}
