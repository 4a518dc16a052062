package codec

import (
	"regexp"
	"strings"

	"uma-config/config"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	unsafeChars   = regexp.MustCompile(`[^a-zA-Z0-9_\-]`)
)

// FileName is the download name for an exported token:
// <config_name>_<trainee>.txt, reduced to [A-Za-z0-9_-].
func FileName(c config.Config) string {
	return safePart(c.ConfigName, "preset") + "_" + safePart(c.Trainee, "trainee") + ".txt"
}

func safePart(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		s = fallback
	}
	s = whitespaceRun.ReplaceAllString(strings.TrimSpace(s), "_")
	return unsafeChars.ReplaceAllString(s, "")
}
