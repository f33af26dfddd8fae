package manifest

import (
	"bufio"
	"io"
	"strings"
)

// MetadataVersion is the core metadata version written to PKG-INFO.
const MetadataVersion = "2.1"

// WritePKGINFO renders the manifest in the core metadata format used by
// PKG-INFO and METADATA files. The long description becomes the message
// body, written verbatim after a blank line.
func (m PackageManifest) WritePKGINFO(w io.Writer) error {
	bw := bufio.NewWriter(w)

	header := func(key, value string) {
		if value == "" {
			return
		}
		bw.WriteString(key)
		bw.WriteString(": ")
		// continuation lines are indented so the header stays one field
		bw.WriteString(strings.ReplaceAll(value, "\n", "\n        "))
		bw.WriteByte('\n')
	}

	header("Metadata-Version", MetadataVersion)
	header("Name", m.Name)
	header("Version", m.Version)
	header("Summary", m.Description)
	header("Home-page", m.URL)
	header("Keywords", m.Keywords)
	header("Author", m.Author)
	header("Author-email", m.AuthorEmail)
	header("License", m.License)
	for _, c := range m.Classifiers {
		header("Classifier", c)
	}
	for _, r := range m.InstallRequires {
		header("Requires-Dist", r)
	}
	header("Description-Content-Type", m.LongDescriptionContentType)

	if m.LongDescription != "" {
		bw.WriteByte('\n')
		bw.WriteString(m.LongDescription)
	}

	return bw.Flush()
}

// PKGINFO returns WritePKGINFO's output as a string.
func (m PackageManifest) PKGINFO() string {
	var sb strings.Builder
	// strings.Builder never fails
	_ = m.WritePKGINFO(&sb)
	return sb.String()
}
