package extraction

import (
	"regexp"
	"strings"

	"github.com/shortalex12333/Image-processing-sub000/model"
)

// TableDetection reports whether a tabular layout was found and how
// confident the detector is that rows/columns were identified correctly.
type TableDetection struct {
	Found      bool
	Confidence float64
	RowCount   int
	ColCount   int
}

// DetectTable implements the Table Detector. When at least four fragments
// with bounding boxes are available it groups them into rows by their top
// coordinate (10 px buckets) and takes the largest number of fragments in
// one row as the column count; columns are not clustered by horizontal
// position. Otherwise it falls back to text-only heuristics over
// separator characters and digit-line density.
func DetectTable(fragments []model.LineFragment, text string) TableDetection {
	if len(fragments) >= 4 {
		if d, ok := detectByBoundingBox(fragments); ok {
			return d
		}
	}
	return detectByTextHeuristics(text)
}

func detectByBoundingBox(fragments []model.LineFragment) (TableDetection, bool) {
	rowBuckets := map[int][]model.LineFragment{}
	for _, f := range fragments {
		rowKey := f.Y1 / 10
		rowBuckets[rowKey] = append(rowBuckets[rowKey], f)
	}
	if len(rowBuckets) < 2 {
		return TableDetection{}, false
	}

	maxCols := 0
	consistentRows := 0
	colCounts := make([]int, 0, len(rowBuckets))
	for _, frags := range rowBuckets {
		colCounts = append(colCounts, len(frags))
		if len(frags) > maxCols {
			maxCols = len(frags)
		}
	}
	for _, c := range colCounts {
		if c >= 2 {
			consistentRows++
		}
	}
	if consistentRows < 2 || maxCols < 2 {
		return TableDetection{}, false
	}

	rowConsistency := float64(consistentRows) / float64(len(rowBuckets))
	confidence := 0.5 + 0.5*rowConsistency
	if confidence > 1.0 {
		confidence = 1.0
	}

	return TableDetection{
		Found:      true,
		Confidence: confidence,
		RowCount:   len(rowBuckets),
		ColCount:   maxCols,
	}, true
}

var (
	columnSeparator = regexp.MustCompile(`\s{2,}|\t|\|`)
	digitLine        = regexp.MustCompile(`\d`)
)

func detectByTextHeuristics(text string) TableDetection {
	lines := strings.Split(text, "\n")
	if len(lines) < 2 {
		return TableDetection{Found: false}
	}

	separatorLines := 0
	digitLines := 0
	nonEmpty := 0
	maxCols := 0
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		nonEmpty++
		cols := columnSeparator.Split(strings.TrimSpace(l), -1)
		if len(cols) >= 2 {
			separatorLines++
			if len(cols) > maxCols {
				maxCols = len(cols)
			}
		}
		if digitLine.MatchString(l) {
			digitLines++
		}
	}
	if nonEmpty == 0 {
		return TableDetection{Found: false}
	}

	separatorRatio := float64(separatorLines) / float64(nonEmpty)
	digitRatio := float64(digitLines) / float64(nonEmpty)

	found := separatorRatio >= 0.4 || digitRatio >= 0.5
	confidence := 0.3*separatorRatio + 0.3*digitRatio
	if found && confidence < 0.3 {
		confidence = 0.3
	}

	return TableDetection{
		Found:      found,
		Confidence: confidence,
		RowCount:   nonEmpty,
		ColCount:   maxCols,
	}
}
