/*
Package config loads registry settings from YAML or JSON.

# Overview

Settings describes how a registry is observed and how long callers wait on
another caller's construction. Values are read leniently: a missing key or a
value of the wrong type leaves the default in place.

# File Format

	wait_timeout: 5s      # string duration, or a number of seconds
	metrics: true
	tracing: false
	log_level: debug      # debug, info, warn, error
	journal:
	  driver: sqlite      # memory or sqlite; empty disables the journal
	  dsn: ./journal.db

# Loading

	settings, err := config.FromFile("singleton.yaml")
	if err != nil {
	    log.Fatal(err)
	}
	r := registry.New(registry.OptionsFromSettings(settings)...)

FromYAML and FromJSON parse in-memory data the same way.
*/
package config
