package netinfo

import "strings"

// ParseNetsh extracts the SSID from `netsh wlan show interfaces` output.
// The first line whose key is exactly "SSID" wins; BSSID lines are ignored.
func ParseNetsh(out string) (string, bool) {
	for _, line := range strings.Split(out, "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found || strings.TrimSpace(key) != "SSID" {
			continue
		}
		if ssid := strings.TrimSpace(value); ssid != "" {
			return ssid, true
		}
	}
	return "", false
}

// ParseNmcli extracts the active SSID from `nmcli -t -f active,ssid dev wifi` output.
// Terse mode escapes literal colons in values as `\:`.
func ParseNmcli(out string) (string, bool) {
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		rest, ok := strings.CutPrefix(line, "yes:")
		if !ok {
			continue
		}
		ssid := strings.ReplaceAll(rest, `\:`, ":")
		if ssid != "" {
			return ssid, true
		}
	}
	return "", false
}

// ParseNetworksetup extracts the SSID from `networksetup -getairportnetwork <if>` output.
func ParseNetworksetup(out string) (string, bool) {
	const prefix = "Current Wi-Fi Network:"
	for _, line := range strings.Split(out, "\n") {
		rest, ok := strings.CutPrefix(strings.TrimSpace(line), prefix)
		if !ok {
			continue
		}
		if ssid := strings.TrimSpace(rest); ssid != "" {
			return ssid, true
		}
	}
	return "", false
}
