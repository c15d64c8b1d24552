//go:build !exif

package mediakind

const exifEnabled = false
