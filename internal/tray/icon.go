package tray

import _ "embed"

//go:embed icon.ico
var iconData []byte

// GetIcon returns the tray icon in ICO format.
func GetIcon() []byte {
	return iconData
}
