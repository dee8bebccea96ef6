// Package ctx holds the key type of all values codecamp puts in a context.
package ctx

// CTXKey is the type used by all keys put in a context.
// As recommended by the package context, codecamp defines and uses its own data type for keys in the use of WithValue.
type CTXKey string
