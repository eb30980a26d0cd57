// Package validation checks uploaded files against the configured size and
// extension limits before they reach the loader.
package validation
