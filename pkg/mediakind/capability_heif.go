//go:build heif

package mediakind

const heifEnabled = true
