// Package config defines the format-agnostic grammar document model that the
// resolver, assembler, and emitter operate on, along with the Loader
// interface implemented by format-specific packages such as `hcl`.
//
// The Document is built once per run by a Loader and is treated as immutable
// afterwards: downstream stages copy rules before rewriting them.
package config
