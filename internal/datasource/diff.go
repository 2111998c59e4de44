package datasource

import (
	"fmt"
	"sort"
	"strings"

	"github.com/DipokalLab/intellect/pkg/model"
)

// DocumentDiff describes how two documents disagree.
type DocumentDiff struct {
	SourceA, SourceB string

	// MissingInA holds node ids present in B but not A, and vice versa.
	MissingInA []string
	MissingInB []string
	// YearMismatch lists nodes whose axis year differs between the sources.
	YearMismatch []YearDifference

	EdgesOnlyInA []string
	EdgesOnlyInB []string

	CountA, CountB int
}

// YearDifference is one node placed differently on the time axis.
type YearDifference struct {
	ID    string `json:"id"`
	YearA int    `json:"year_a"`
	YearB int    `json:"year_b"`
}

// HasInconsistencies reports whether the sources differ at all.
func (d DocumentDiff) HasInconsistencies() bool {
	return len(d.MissingInA) > 0 || len(d.MissingInB) > 0 || len(d.YearMismatch) > 0 ||
		len(d.EdgesOnlyInA) > 0 || len(d.EdgesOnlyInB) > 0
}

// Summary returns a human-readable summary.
func (d DocumentDiff) Summary() string {
	if !d.HasInconsistencies() {
		return fmt.Sprintf("Sources match (%d nodes each)", d.CountA)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Differences between %s and %s:\n", d.SourceA, d.SourceB)
	if d.CountA != d.CountB {
		fmt.Fprintf(&sb, "  - Node count: %d vs %d\n", d.CountA, d.CountB)
	}
	list := func(header string, ids []string) {
		if len(ids) == 0 {
			return
		}
		fmt.Fprintf(&sb, "  - %d %s\n", len(ids), header)
		if len(ids) <= 5 {
			for _, id := range ids {
				fmt.Fprintf(&sb, "    - %s\n", id)
			}
		}
	}
	list(fmt.Sprintf("nodes in %s but not %s", d.SourceB, d.SourceA), d.MissingInA)
	list(fmt.Sprintf("nodes in %s but not %s", d.SourceA, d.SourceB), d.MissingInB)
	if len(d.YearMismatch) > 0 {
		fmt.Fprintf(&sb, "  - %d nodes with a different year\n", len(d.YearMismatch))
		if len(d.YearMismatch) <= 5 {
			for _, m := range d.YearMismatch {
				fmt.Fprintf(&sb, "    - %s: %s vs %s\n", m.ID, model.FormatYear(m.YearA), model.FormatYear(m.YearB))
			}
		}
	}
	list(fmt.Sprintf("edges only in %s", d.SourceA), d.EdgesOnlyInA)
	list(fmt.Sprintf("edges only in %s", d.SourceB), d.EdgesOnlyInB)
	return sb.String()
}

// DiffDocuments compares two documents by node id, axis year and edge key.
// Parallel edges count as distinct.
func DiffDocuments(a, b *model.GraphDocument, sourceA, sourceB string) DocumentDiff {
	d := DocumentDiff{SourceA: sourceA, SourceB: sourceB}
	idxA, idxB := a.BuildIndex(), b.BuildIndex()
	d.CountA, d.CountB = len(idxA), len(idxB)

	for id, na := range idxA {
		nb, ok := idxB[id]
		if !ok {
			d.MissingInB = append(d.MissingInB, id)
			continue
		}
		if na.Year() != nb.Year() {
			d.YearMismatch = append(d.YearMismatch, YearDifference{ID: id, YearA: na.Year(), YearB: nb.Year()})
		}
	}
	for id := range idxB {
		if _, ok := idxA[id]; !ok {
			d.MissingInA = append(d.MissingInA, id)
		}
	}

	d.EdgesOnlyInA, d.EdgesOnlyInB = edgeDiff(a.Edges, b.Edges)

	sort.Strings(d.MissingInA)
	sort.Strings(d.MissingInB)
	sort.Slice(d.YearMismatch, func(i, j int) bool { return d.YearMismatch[i].ID < d.YearMismatch[j].ID })
	return d
}

func edgeDiff(a, b []model.Edge) (onlyA, onlyB []string) {
	count := make(map[string]int)
	for _, e := range a {
		count[e.Key()]++
	}
	for _, e := range b {
		count[e.Key()]--
	}
	for k, n := range count {
		for ; n > 0; n-- {
			onlyA = append(onlyA, k)
		}
		for ; n < 0; n++ {
			onlyB = append(onlyB, k)
		}
	}
	sort.Strings(onlyA)
	sort.Strings(onlyB)
	return onlyA, onlyB
}
