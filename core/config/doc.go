// Package config provides configuration management for position-tally.
//
// It utilizes Viper for loading configuration from environment variables, a .env file
// and an optional config.toml (or config.yaml) in the working directory.
//
// # Configuration Structure
//
// The Config struct is divided into subsections:
//   - Server: HTTP port and API key
//   - Log: Logging level and format
//   - Database: run history connection
//   - OpenFIGI: identifier mapping client
//   - Reconcile: default identifiers, diff policy, result output and history switch
//   - Connection: named raw byte sources (s3, sftp, local)
//   - Provider: provider label to adapter, connection and path pattern
//
// Scalar settings can be overridden with SECTION_KEY environment variables. Connection and
// provider entries are maps and come from the config file:
//
//	[connection.novi_s3]
//	type = "s3"
//	endpoint = "s3.amazonaws.com"
//	bucket = "noviscient-positions"
//
//	[provider.ib]
//	connection = "novi_s3"
//	path = "IB/F5678557_Position_%Y%m%d.csv"
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
