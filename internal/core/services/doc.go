// Package services implements the driving port interfaces.
// Services contain the retrieval, caching and generation logic and
// orchestrate calls to driven ports (adapters).
//
// Services are pure Go with no CGO or network code of their own.
package services
