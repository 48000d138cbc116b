// Package utils provides loose type conversion helpers used when decoding
// master-data dumps whose numeric and flag columns are not consistently typed.
package utils
