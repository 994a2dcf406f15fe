package utilities

import "github.com/ecodeclub/ekit/slice"

// Contains checks if a string is present in a slice of strings.
func Contains(s []string, v string) bool {
	return slice.Contains(s, v)
}
