// Package config provides configuration management for the web service.
//
// Configuration is loaded from environment variables using the env package.
// An optional env file (ENV_FILE, default .env) is read first; variables that
// are already set in the environment take precedence over the file.
// Every value has a default, so the service starts with no configuration at
// all and listens on 0.0.0.0:5000.
//
// Example usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("HTTP server will listen on %s\n", cfg.GetHTTPAddr())
package config
