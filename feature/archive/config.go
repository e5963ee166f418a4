package archive

// Config holds configuration for archiving run reports.
type Config struct {
	// Enabled uploads every run report to the storage bucket.
	Enabled bool `mapstructure:"enabled" default:"false"`
	// Prefix is the object key prefix of archived reports.
	Prefix string `mapstructure:"prefix" default:"reconcile-reports"`
}
