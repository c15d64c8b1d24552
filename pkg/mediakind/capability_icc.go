//go:build icc

package mediakind

const iccEnabled = true
