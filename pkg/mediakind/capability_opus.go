//go:build opus

package mediakind

const opusEnabled = true
