// Package secret keeps credentials such as store DSNs out of config files.
package secret

import "errors"

// ErrNotFound is returned by Get when nothing is stored under the key.
var ErrNotFound = errors.New("secret not found")

// Store holds named secrets. The OS keychain is the default; tests and
// other platforms may swap in anything with the same shape.
type Store interface {
	Set(key string, value []byte) error
	Get(key string) ([]byte, error)
	Delete(key string) error
}
