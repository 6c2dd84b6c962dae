// Package config provides configuration loading and validation for sitehost.
//
// The package handles YAML configuration files, environment variables, and CLI flags
// with automatic merging and validation using go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. Environment variables (SITEHOST_ prefix)
//  4. CLI flags
//
// # Usage
//
//	cfg, err := config.Load([]string{"config.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Store in context for subcommands
//	ctx = config.WithContext(ctx, cfg)
//
//	// Retrieve later
//	cfg, err = config.FromContext(ctx)
//
// # Environment Variables
//
// All config keys map to environment variables with SITEHOST_ prefix:
//   - server.port → SITEHOST_SERVER_PORT
//   - database.type → SITEHOST_DATABASE_TYPE
//   - service.strict_assets → SITEHOST_SERVICE_STRICT_ASSETS
//
// # Configuration Structure
//
// The Config struct contains:
//   - Env: dev (coloured text logs) or prod (JSON logs)
//   - Server: port, base_url for returned view links, and max_upload_size
//   - Service: operation and cleanup timeouts in seconds, worker count,
//     strict_assets, and max_site_bytes
//   - Database: type, DSN, sites table name, and auto_migrate
//   - Storage: root directory holding the sites/ and deleted/ trees
//   - CORS: cross-origin resource sharing settings
//   - Log: logging level
//
// # Validation
//
// Configuration is validated using struct tags:
//   - Port must be 1-65535
//   - Env must be dev or prod
//   - Database type must be sqlite or postgres
//   - Timeouts must be at least one second
//   - Log level must be debug, info, warn, or error
//
// Table names are additionally checked with sitehost.Tables.Validate.
package config
