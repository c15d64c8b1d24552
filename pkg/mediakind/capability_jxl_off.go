//go:build !jxl

package mediakind

const jxlEnabled = false
