// SPDX-License-Identifier: EPL-2.0

package capture

import (
	"mime"
	"strings"
)

// Fallback container order used when a content type is unknown or a device
// states no preference.
var containerOrder = []string{"webm", "mp4", "wav"}

var extensions = map[string]string{
	"audio/webm":     "webm",
	"video/webm":     "webm",
	"audio/mp4":      "mp4",
	"video/mp4":      "mp4",
	"audio/x-m4a":    "mp4",
	"audio/aac":      "mp4",
	"audio/wav":      "wav",
	"audio/wave":     "wav",
	"audio/x-wav":    "wav",
	"audio/vnd.wave": "wav",
	"audio/ogg":      "ogg",
	"audio/mpeg":     "mp3",
	"audio/flac":     "flac",
}

// ExtensionFor suggests a file extension (without dot) for a recorded blob of
// the given content type. Parameters such as codecs are ignored. Unknown
// types fall back to the first container of webm, mp4, wav named in the
// type, and to webm otherwise.
func ExtensionFor(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}

	if ext, ok := extensions[mediaType]; ok {
		return ext
	}

	for _, ext := range containerOrder {
		if strings.Contains(mediaType, ext) {
			return ext
		}
	}

	return containerOrder[0]
}

// PreferredContentType picks the content type to request from a device.
// supported reports whether the device can record a type; the first of
// audio/webm, audio/mp4, audio/wav it accepts wins. The empty string means
// none is supported and the device default applies.
func PreferredContentType(supported func(contentType string) bool) string {
	for _, ext := range containerOrder {
		if ct := "audio/" + ext; supported(ct) {
			return ct
		}
	}

	return ""
}
