package client

import "regexp"

var driveFileRe = regexp.MustCompile(`/file/d/(.*?)/`)

// DirectDriveLink rewrites a Google Drive "view" link into its direct
// download form usable as an image source. Other URLs pass through
// unchanged.
func DirectDriveLink(url string) string {
	m := driveFileRe.FindStringSubmatch(url)
	if m == nil {
		return url
	}
	return "https://drive.google.com/uc?id=" + m[1]
}
