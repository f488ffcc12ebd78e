// Package filesystem holds small path helpers shared by the config loader
// and the on-disk stores.
package filesystem

import "os"

// UserHomeDir resolves the home directory, falling back to the current
// directory when the environment does not define one.
func UserHomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return home
}
