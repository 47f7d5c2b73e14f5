package models

import "strings"

// SplitNames splits a free-text participant list. A semicolon anywhere in the
// text makes it the separator, otherwise commas are used. Entries are trimmed and
// empty entries dropped.
func SplitNames(text string) []string {
	sep := ","
	if strings.Contains(text, ";") {
		sep = ";"
	}
	parts := strings.Split(text, sep)
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			names = append(names, p)
		}
	}
	return names
}

// Names flattens the list to participant names, skipping entries without one.
func (s SideList) Names() []string {
	switch s.Shape {
	case SideText:
		return SplitNames(s.Text)
	case SideItems:
		names := make([]string, 0, len(s.Items))
		for _, it := range s.Items {
			if n := strings.TrimSpace(it.NameSide); n != "" {
				names = append(names, n)
			}
		}
		return names
	case SideAbsent, SideNull:
		return nil
	default:
		return nil
	}
}
