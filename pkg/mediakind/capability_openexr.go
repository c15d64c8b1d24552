//go:build openexr

package mediakind

const openexrEnabled = true
