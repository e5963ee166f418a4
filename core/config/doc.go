// Package config provides configuration management for the reconciler.
//
// It utilizes Viper for loading configuration from environment variables
// and an optional .env file. Defaults come from the `default` struct tags.
//
// # Configuration Structure
//
// The Config struct is the central repository for all settings, divided into subsections:
//   - Log: Logging level and format
//   - Database: driver (sqlite, mysql) and connection details
//   - Storage: S3/MinIO credentials used for s3:// exports and report archives
//   - Marketplace: batch-results export location, HIT nicknames, completion key field
//   - Archive: whether and where to upload run reports
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Marketplace.Results)
package config
