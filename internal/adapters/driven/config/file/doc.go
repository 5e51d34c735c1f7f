// Package file keeps state on local disk: config.toml, prompt templates
// that users can edit, and the original bytes of every upload.
package file
