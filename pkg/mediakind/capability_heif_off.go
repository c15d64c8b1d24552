//go:build !heif

package mediakind

const heifEnabled = false
