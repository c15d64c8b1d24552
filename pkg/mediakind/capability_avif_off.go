//go:build !avif

package mediakind

const avifEnabled = false
