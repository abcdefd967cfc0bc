package metadata

import "strings"

// DeleteKeyword marks an image for removal by the sync pipeline.
const DeleteKeyword = "delete"

// HasDeleteKeyword reports whether any keyword equals DeleteKeyword,
// ignoring case. Substrings such as "deleted" do not match.
func HasDeleteKeyword(keywords []string) bool {
	for _, k := range keywords {
		if strings.EqualFold(k, DeleteKeyword) {
			return true
		}
	}
	return false
}

func hasDeleteTag(set *DirectorySet) bool {
	dir, ok := set.IPTC()
	if !ok {
		return false
	}
	keywords, ok := dir.Strings(TagIPTCKeywords)
	if !ok {
		return false
	}
	return HasDeleteKeyword(keywords)
}
