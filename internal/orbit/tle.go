package orbit

import (
	"strconv"
	"strings"
)

// TLE is a pair of formatted element lines with an optional name line.
type TLE struct {
	Name  string
	Line1 string
	Line2 string
}

// NormalizeCatalogID trims a catalog number and strips leading zeros from
// purely numeric ids so "00005", " 5" and 5 all key the same object.
func NormalizeCatalogID(raw string) string {
	id := strings.TrimSpace(raw)
	if id == "" {
		return ""
	}
	if n, err := strconv.Atoi(id); err == nil && n >= 0 {
		return strconv.Itoa(n)
	}
	return id
}

// CatalogNumber extracts the catalog number from columns 3-7 of a TLE line.
func CatalogNumber(line string) (string, bool) {
	if len(line) < 7 {
		return "", false
	}
	id := NormalizeCatalogID(line[2:7])
	return id, id != ""
}

// ValidChecksum verifies the modulo-10 checksum in column 69. Digits count at
// face value, '-' counts as one, everything else as zero.
func ValidChecksum(line string) bool {
	line = strings.TrimRight(line, " \r")
	if len(line) != 69 {
		return false
	}
	sum := 0
	for _, r := range line[:68] {
		switch {
		case r >= '0' && r <= '9':
			sum += int(r - '0')
		case r == '-':
			sum++
		}
	}
	want := line[68]
	if want < '0' || want > '9' {
		return false
	}
	return sum%10 == int(want-'0')
}

// ParseTLEText splits a two- or three-line listing into element sets. Pairs whose
// lines fail the checksum or disagree on catalog number are skipped.
func ParseTLEText(text string) map[string]TLE {
	out := map[string]TLE{}
	var name string
	var line1 string
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimRight(raw, " \r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, "1 ") && line1 == "":
			line1 = line
		case strings.HasPrefix(line, "2 ") && line1 != "":
			id1, ok1 := CatalogNumber(line1)
			id2, ok2 := CatalogNumber(line)
			if ok1 && ok2 && id1 == id2 && ValidChecksum(line1) && ValidChecksum(line) {
				out[id1] = TLE{Name: name, Line1: line1, Line2: line}
			}
			name, line1 = "", ""
		default:
			name = strings.TrimSpace(strings.TrimPrefix(line, "0 "))
			line1 = ""
		}
	}
	return out
}
