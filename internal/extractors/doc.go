// Package extractors turns uploaded files into numbered pages of text.
// Each sub-package handles a family of file extensions. The Registry
// dispatches on the upload's extension and is populated at startup by
// RegisterDefaults.
package extractors
