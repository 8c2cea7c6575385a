// Package files resolves command-line input arguments into tabular files
// for the cleancsv CLI.
//
// Discovery accepts a mix of plain paths, directories, and glob patterns and
// expands them into the supported file set (csv, xls, xlsx), deduplicated
// and deterministically ordered. Relative arguments resolve against a
// configurable base path to keep the CLI portable.
//
// Example usage:
//
//	discovery := files.NewDiscovery("")
//
//	// Expand CLI arguments: files, directories, globs
//	inputs, err := discovery.Resolve([]string{"data/", "extra/*.xlsx"})
//
//	// Or list one directory directly
//	inputs, err = discovery.FindTabularFiles("data/uploads")
package files
