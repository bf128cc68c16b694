// Package build runs complete site builds: it ingests source and kit files,
// extracts parts into the Context, schedules every page through the
// pipeline in passes and writes the results to the target directory.
//
// All execution paths (build, watch, tests) go through Service.
package build
