// Package pdf contains the domain model for generated PDF documents:
// the file artifact tracked by the store and the page-format options
// passed to the render engine.
package pdf
