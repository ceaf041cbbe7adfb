// Package cli turns command line arguments into an app.Config. It owns the
// eager actions (--version, --help, --help-template) and maps argument
// errors to exit code 2.
package cli
