// ABOUTME: Version and product identification
// ABOUTME: Shared by the CLI banner, TUI header and tonegen WAV tags
package version

const (
	Version      = "0.1.0"
	Product      = "ringplay"
	Manufacturer = "Resonate Protocol"
)

// String returns the product banner
func String() string {
	return Product + " " + Version
}
