// Package profiles registers the supported column naming conventions with
// the core profile registry. Import this package to ensure all profiles are
// registered.
package profiles

func init() {
	registerStandard()
	registerSnake()
}
