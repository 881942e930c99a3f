// Package config loads the service configuration from an optional file, a
// .env file and FUTUREVIEW_-prefixed environment variables, and validates it
// with struct tags before any component is built.
package config
