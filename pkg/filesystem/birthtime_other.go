//go:build !windows

package filesystem

import "time"

// setBirthTime is a no-op: unix filesystems expose no call to rewrite the birth time.
func setBirthTime(string, time.Time) error {
	return nil
}
