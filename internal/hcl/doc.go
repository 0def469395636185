// Package hcl implements the config.Loader interface for HCL grammar
// fragments. It discovers every fragment file under the grammar root,
// parses and decodes it, and merges all fragments into a single
// config.Document, failing fast on malformed files, duplicate names, and
// rules with conflicting actions.
package hcl
