// Package listing renders directory entries as UNIX "ls -l" style lines,
// the wire format LIST and NLST write to the data channel.
//
// The format is deliberately synthetic (fixed permissions, fixed owner and
// group) rather than a reflection of real host metadata: spec §4.6 calls
// for a locale-independent, heuristically-parseable listing, not an
// accurate `ls -l`.
package listing

import (
	"fmt"
	"os"
	"sort"
	"time"
)

const (
	dirPerms  = "drwxrwxrwx"
	filePerms = "-rw-rw-rw-"
	owner     = "owner"
	group     = "group"

	sixMonths = time.Hour * 24 * 180
)

// months are hard-coded English three-letter abbreviations: the formatter
// must stay locale-independent so heuristic FTP clients can parse it.
var months = [...]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// Line renders a single os.FileInfo in the §4.6 column layout, relative to
// now (used to decide between a HH:MM or a year field). The returned
// string does not include a line terminator; callers append CRLF.
func Line(info os.FileInfo, now time.Time) string {
	perms := filePerms
	size := info.Size()

	if info.IsDir() {
		perms = dirPerms
		size = 0
	}

	mtime := info.ModTime()
	local := mtime.Local()

	var dateField string
	if absDuration(now.Sub(mtime)) < sixMonths {
		dateField = fmt.Sprintf("%s %2d %5s", months[local.Month()-1], local.Day(), local.Format("15:04"))
	} else {
		dateField = fmt.Sprintf("%s %2d %5d", months[local.Month()-1], local.Day(), local.Year())
	}

	return fmt.Sprintf("%s %d %-8s %-8s %12d %s %s",
		perms, 1, owner, group, size, dateField, info.Name())
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}

	return d
}

// Sort orders entries directories-first, preserving the relative order the
// filesystem returned within each group (spec §4.6: "insertion order...no
// explicit sort required" beyond the directory/file partition).
func Sort(entries []os.FileInfo) []os.FileInfo {
	out := make([]os.FileInfo, len(entries))
	copy(out, entries)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].IsDir() && !out[j].IsDir()
	})

	return out
}

// Names returns the bare entry names, one per NLST line, directories first
// (same ordering rule as Sort).
func Names(entries []os.FileInfo) []string {
	sorted := Sort(entries)
	names := make([]string, len(sorted))

	for i, e := range sorted {
		names[i] = e.Name()
	}

	return names
}
