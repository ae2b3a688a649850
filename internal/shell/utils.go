package shell

import (
	"path/filepath"
	"strings"

	"github.com/talonops/talon/internal/api"
)

// OutputFileName derives a collision-free local filename for a retrieved
// file. Hostname, device ID and content hash are all embedded so that the
// same path retrieved from many hosts, or different content from the same
// host, never overwrite each other in the download directory.
func OutputFileName(file api.RetrievedFile, hostname string) string {
	var base string
	if strings.HasPrefix(file.Filename, "/") {
		base = file.Filename[strings.LastIndex(file.Filename, "/")+1:]
	} else {
		base = file.Filename[strings.LastIndex(file.Filename, `\`)+1:]
	}

	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	return stem + "_" + hostname + "_" + file.DeviceID + "_" + file.SHA256 + ext
}
