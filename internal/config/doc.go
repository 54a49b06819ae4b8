// Package config handles application configuration for the license server.
//
// Configuration is loaded from environment variables (prefix LICENSED) and
// an optional YAML file, with environment values taking precedence. A bare
// PORT variable is also honored so the server runs unchanged on platforms
// that inject one.
package config
