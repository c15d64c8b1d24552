//go:build !opus

package mediakind

const opusEnabled = false
