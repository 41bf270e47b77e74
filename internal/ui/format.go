package ui

import "fmt"

// FormatVolume renders a dollar volume with a K/M/B suffix.
func FormatVolume(volume float64) string {
	switch {
	case volume >= 1_000_000_000:
		return fmt.Sprintf("%.2fB", volume/1_000_000_000)
	case volume >= 1_000_000:
		return fmt.Sprintf("%.2fM", volume/1_000_000)
	case volume >= 1_000:
		return fmt.Sprintf("%.2fK", volume/1_000)
	default:
		return fmt.Sprintf("%.2f", volume)
	}
}

// FormatAddress shortens a wallet address to its first six and last four
// characters.
func FormatAddress(address string) string {
	if len(address) <= 10 {
		return address
	}
	return address[:6] + "..." + address[len(address)-4:]
}
