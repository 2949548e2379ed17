// Package printing holds page setup for rendered documents: paper size,
// orientation and margins.
package printing
