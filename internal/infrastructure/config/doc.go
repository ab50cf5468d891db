// Package config loads the desktop backend configuration.
//
// Values come from environment variables (12-factor) with defaults declared
// on the struct tags. An optional TOML file can be layered on top; keys
// present in the file win over the environment.
//
// Example Usage:
//
//	cfg, err := config.LoadFile("/etc/webdesk/desktop.toml")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(cfg.Session.BootDuration.Std())
package config
