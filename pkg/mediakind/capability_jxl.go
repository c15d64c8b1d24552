//go:build jxl

package mediakind

const jxlEnabled = true
