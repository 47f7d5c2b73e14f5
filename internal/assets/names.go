package assets

import (
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Key identifies a document independent of where it is downloaded from.
type Key struct {
	CaseID     int64
	DocumentID string
}

var unsafeChars = strings.NewReplacer("/", "_", `\`, "_", " ", "_")

// safeID maps a document id onto blob-name characters. Path separators and
// spaces become underscores; anything else outside [A-Za-z0-9._-] does too.
func safeID(id string) string {
	id = unsafeChars.Replace(id)
	var b strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

func casePrefix(caseID int64) string {
	return "case_" + strconv.FormatInt(caseID, 10) + "_"
}

// FileName is the blob name for a document fetched from remoteURL. The URL
// hash keeps two sources for the same document apart.
func FileName(k Key, remoteURL string) string {
	return casePrefix(k.CaseID) + safeID(k.DocumentID) + "_" + strconv.FormatUint(xxhash.Sum64String(remoteURL), 16) + ".pdf"
}

// LegacyFileName is the name used before URL hashing was introduced.
func LegacyFileName(k Key) string {
	return casePrefix(k.CaseID) + safeID(k.DocumentID) + ".pdf"
}

// isFileNameFor reports whether name is a current blob name of k. A document
// whose id extends k's id after an underscore shares the list prefix, so the
// remainder must be exactly the URL hash.
func isFileNameFor(k Key, name string) bool {
	rest, ok := strings.CutPrefix(name, casePrefix(k.CaseID)+safeID(k.DocumentID)+"_")
	if !ok {
		return false
	}
	hash, ok := strings.CutSuffix(rest, ".pdf")
	if !ok || hash == "" || len(hash) > 16 {
		return false
	}
	for _, r := range hash {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}
