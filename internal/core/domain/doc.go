// Package domain is the planroom vocabulary: documents and their page
// chunks, scored matches, cached answers, conversations and extraction
// schemas. It imports nothing outside the standard library and every
// other package may import it.
package domain
