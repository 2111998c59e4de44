//go:build ignore

// generate_testdata.go writes graph documents of increasing size for
// profiling the layout and the exporters.
// Usage: go run scripts/generate_testdata.go
//
// Creates:
//
//	testdata/benchmark/small.json   (50 persons, 150 achievements)
//	testdata/benchmark/medium.json  (300 persons, 900 achievements)
//	testdata/benchmark/large.json   (1500 persons, 4500 achievements)
//
// Open one with: intellect --source testdata/benchmark/medium.json
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/DipokalLab/intellect/pkg/loader"
	"github.com/DipokalLab/intellect/pkg/model"
	"github.com/DipokalLab/intellect/pkg/testutil"
)

type datasetSpec struct {
	name      string
	persons   int
	perPerson int
}

var datasets = []datasetSpec{
	{"small", 50, 3},
	{"medium", 300, 3},
	{"large", 1500, 3},
}

var fields = []string{
	"Physics", "Mathematics", "Philosophy", "Biology", "Chemistry",
	"Astronomy", "Medicine", "Economics", "Literature", "Computer Science",
}

func main() {
	outputDir := filepath.Join("testdata", "benchmark")

	for _, ds := range datasets {
		fmt.Printf("Generating %s dataset (%d persons)...\n", ds.name, ds.persons)

		gen := testutil.New(testutil.GeneratorConfig{
			Seed:    int64(ds.persons), // Reproducible per size
			Fields:  fields,
			MinYear: -600,
			MaxYear: 1990,
		})
		doc := gen.Timeline(ds.persons, ds.perPerson)
		nameAchievements(doc)

		outputPath := filepath.Join(outputDir, ds.name+".json")
		if err := loader.WriteDocument(outputPath, doc); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", outputPath, err)
			os.Exit(1)
		}
		fmt.Printf("  Written %s (%d nodes, %d edges, %d fields)\n",
			outputPath, doc.NodeCount(), len(doc.Edges), len(doc.AllFields()))
	}

	fmt.Println("\nDone! Datasets created in", outputDir)
}

// nameAchievements replaces generated titles with readable ones so labels
// have realistic widths.
func nameAchievements(doc *model.GraphDocument) {
	titles := []string{
		"Theory of heat conduction",
		"Catalogue of fixed stars",
		"Proof of the prime number theorem",
		"On the origin of variation",
		"Treatise on light",
		"Principles of political economy",
		"Laws of inheritance",
		"Elements of geometry",
	}
	for i := range doc.Achievements {
		doc.Achievements[i].Title = fmt.Sprintf("%s #%d", titles[i%len(titles)], i)
	}
}
