// Package cli provides the filedrop command-line client.
//
// Commands:
//
//	filedrop upload FILE...      upload each file in its own request
//	filedrop info KEY            print the stored metadata
//	filedrop get KEY [-o PATH]   download a file ("-o -" writes to stdout)
//	filedrop health              probe the server
//	filedrop version             print build data
//
// Global flags --server, --timeout and --config override the settings
// loaded by the config package. Results are printed as JSON, indented when
// stdout is a terminal.
package cli
