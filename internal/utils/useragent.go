package utils

import (
	"strings"

	ua "github.com/mssola/user_agent"
)

// DeviceInfo is the parsed form of a User-Agent stored with booking audits
type DeviceInfo struct {
	DeviceType string `json:"device_type"` // mobile, tablet, desktop
	OS         string `json:"os"`
	Browser    string `json:"browser"`
	BrowserVer string `json:"browser_ver"`
	IsBot      bool   `json:"is_bot"`
	Platform   string `json:"platform"` // android, ios, windows, mac, linux
}

var tabletMarkers = []string{"ipad", "tablet", "kindle", "playbook", "nexus 7", "nexus 9", "nexus 10", "sm-t"}

var platforms = []struct {
	marker   string
	platform string
}{
	{"android", "android"},
	{"iphone os", "ios"},
	{"ios", "ios"},
	{"windows", "windows"},
	{"mac os x", "mac"},
	{"macos", "mac"},
	{"chrome os", "chromeos"},
	{"cros", "chromeos"},
	{"ubuntu", "linux"},
	{"linux", "linux"},
}

// ParseUserAgent extracts device information from a User-Agent string
func ParseUserAgent(userAgent string) DeviceInfo {
	if userAgent == "" || userAgent == "Unknown" {
		return DeviceInfo{
			DeviceType: "unknown",
			OS:         "Unknown",
			Browser:    "Unknown",
			Platform:   "unknown",
		}
	}

	parser := ua.New(userAgent)
	name, version := parser.Browser()
	if name == "" {
		name = "Unknown"
	}

	osInfo := parser.OSInfo()
	osName := osInfo.Name
	if osName == "" {
		osName = "Unknown"
	} else if osInfo.Version != "" {
		osName += " " + osInfo.Version
	}

	info := DeviceInfo{
		DeviceType: "desktop",
		OS:         osName,
		Browser:    name,
		BrowserVer: version,
		IsBot:      parser.Bot(),
		Platform:   platformOf(osInfo.Name),
	}
	if parser.Mobile() {
		info.DeviceType = "mobile"
		if isTablet(userAgent) {
			info.DeviceType = "tablet"
		}
	}
	return info
}

// Map flattens DeviceInfo for JSONB audit details
func (d DeviceInfo) Map() map[string]interface{} {
	return map[string]interface{}{
		"device_type": d.DeviceType,
		"os":          d.OS,
		"browser":     d.Browser,
		"browser_ver": d.BrowserVer,
		"is_bot":      d.IsBot,
		"platform":    d.Platform,
	}
}

func isTablet(userAgent string) bool {
	lower := strings.ToLower(userAgent)
	for _, marker := range tabletMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func platformOf(osName string) string {
	lower := strings.ToLower(osName)
	for _, p := range platforms {
		if strings.Contains(lower, p.marker) {
			return p.platform
		}
	}
	return "unknown"
}
