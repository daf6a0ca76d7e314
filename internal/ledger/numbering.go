package ledger

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
)

// NextDocumentNumber returns the number the next main or standalone document
// of the given year gets: one past the highest sequence already used that
// year, formatted as {year}-{seq:04d}. Children are not considered. The whole
// list is rescanned on every call.
func NextDocumentNumber(records []Record, year int) string {
	prefix := strconv.Itoa(year) + "-"
	maxSeq := 0

	for _, r := range records {
		if r.ParentDocumentID != nil {
			continue
		}

		rest, ok := strings.CutPrefix(r.DocumentNumber, prefix)
		if !ok {
			continue
		}

		seqStr, _, _ := strings.Cut(rest, "-")

		seq, err := strconv.Atoi(seqStr)
		if err != nil {
			continue
		}

		maxSeq = max(maxSeq, seq)
	}

	return fmt.Sprintf("%d-%04d", year, maxSeq+1)
}

// ChildDocumentNumber formats the number of the index-th child (1-based).
func ChildDocumentNumber(parent string, index int) string {
	return fmt.Sprintf("%s-%d", parent, index)
}

// compareDocumentNumbers orders numbers segment by segment, numerically where
// both segments are numbers, so 2024-0001-2 sorts before 2024-0001-10.
func compareDocumentNumbers(a, b string) int {
	as := strings.Split(a, "-")
	bs := strings.Split(b, "-")

	for i := 0; i < len(as) && i < len(bs); i++ {
		an, aErr := strconv.Atoi(as[i])
		bn, bErr := strconv.Atoi(bs[i])

		var c int
		if aErr == nil && bErr == nil {
			c = cmp.Compare(an, bn)
		} else {
			c = strings.Compare(as[i], bs[i])
		}

		if c != 0 {
			return c
		}
	}

	return cmp.Compare(len(as), len(bs))
}
