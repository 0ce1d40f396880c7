package automl

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"autostreamml/internal/core/domain"
)

type Encoding string

const (
	EncodingNumeric Encoding = "numeric"
	EncodingOneHot  Encoding = "onehot"
	EncodingTarget  Encoding = "target"
)

// missingLevel replaces categorical cells when a column has no values at all.
const missingLevel = "missing"

// targetSmoothing is the pseudo-count pulling rare levels towards the prior.
const targetSmoothing = 1.0

// FeatureSpec describes how one input column becomes model features.
type FeatureSpec struct {
	Name     string
	Encoding Encoding
	Fill     float64
	Mode     string
	Levels   []string
	Targets  map[string]float64
	Prior    float64
}

func (f FeatureSpec) width() int {
	if f.Encoding == EncodingOneHot {
		return len(f.Levels)
	}
	return 1
}

// Preprocessor imputes and encodes raw cells into a numeric matrix. It is
// fitted on training rows only and replayed unchanged at prediction time.
type Preprocessor struct {
	Features    []FeatureSpec
	OutputNames []string
}

// FitPreprocessor learns imputation values and encodings from rows.
// index maps column names to positions in each row.
func FitPreprocessor(rows [][]string, index map[string]int, numeric, categorical []string, y []float64, maxOneHot int) *Preprocessor {
	p := &Preprocessor{}

	for _, name := range numeric {
		j := index[name]
		var sum float64
		var count int
		for _, row := range rows {
			if v, ok := finiteNumber(row[j]); ok {
				sum += v
				count++
			}
		}
		spec := FeatureSpec{Name: name, Encoding: EncodingNumeric}
		if count > 0 {
			spec.Fill = sum / float64(count)
		}
		p.Features = append(p.Features, spec)
		p.OutputNames = append(p.OutputNames, name)
	}

	prior := mean(y)
	for _, name := range categorical {
		j := index[name]
		spec := FeatureSpec{Name: name, Mode: modeOf(rows, j)}

		counts := make(map[string]int)
		sums := make(map[string]float64)
		for i, row := range rows {
			level := spec.impute(row[j])
			counts[level]++
			sums[level] += y[i]
		}
		levels := make([]string, 0, len(counts))
		for level := range counts {
			levels = append(levels, level)
		}
		sort.Strings(levels)

		if len(levels) <= maxOneHot {
			spec.Encoding = EncodingOneHot
			spec.Levels = levels
			for _, level := range levels {
				p.OutputNames = append(p.OutputNames, name+"_"+level)
			}
		} else {
			spec.Encoding = EncodingTarget
			spec.Prior = prior
			spec.Targets = make(map[string]float64, len(levels))
			for _, level := range levels {
				n := float64(counts[level])
				spec.Targets[level] = (sums[level] + targetSmoothing*prior) / (n + targetSmoothing)
			}
			p.OutputNames = append(p.OutputNames, name)
		}
		p.Features = append(p.Features, spec)
	}

	return p
}

// finiteNumber parses a numeric feature cell. Infinite cells count as missing.
func finiteNumber(cell string) (float64, bool) {
	v, ok := domain.ParseNumber(cell)
	if !ok || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

func (f FeatureSpec) impute(cell string) string {
	if domain.IsMissing(cell) {
		return f.Mode
	}
	return cell
}

// Width is the number of output features.
func (p *Preprocessor) Width() int {
	w := 0
	for _, f := range p.Features {
		w += f.width()
	}
	return w
}

// Transform encodes rows. Levels unseen during fitting encode as all-zero
// one-hot columns or as the target prior.
func (p *Preprocessor) Transform(rows [][]string, index map[string]int) (*mat.Dense, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("transform: no rows")
	}
	positions := make([]int, len(p.Features))
	for k, f := range p.Features {
		j, ok := index[f.Name]
		if !ok {
			return nil, fmt.Errorf("transform: column %q is missing", f.Name)
		}
		positions[k] = j
	}

	out := mat.NewDense(len(rows), p.Width(), nil)
	for i, row := range rows {
		col := 0
		for k, f := range p.Features {
			cell := row[positions[k]]
			switch f.Encoding {
			case EncodingNumeric:
				v, ok := finiteNumber(cell)
				if !ok {
					v = f.Fill
				}
				out.Set(i, col, v)
			case EncodingOneHot:
				level := f.impute(cell)
				for l, candidate := range f.Levels {
					if candidate == level {
						out.Set(i, col+l, 1)
						break
					}
				}
			case EncodingTarget:
				v, ok := f.Targets[f.impute(cell)]
				if !ok {
					v = f.Prior
				}
				out.Set(i, col, v)
			}
			col += f.width()
		}
	}
	return out, nil
}

// modeOf returns the most frequent present value; ties go to the smallest.
func modeOf(rows [][]string, j int) string {
	counts := make(map[string]int)
	for _, row := range rows {
		if !domain.IsMissing(row[j]) {
			counts[row[j]]++
		}
	}
	best, bestCount := missingLevel, 0
	for value, count := range counts {
		if count > bestCount || (count == bestCount && value < best) {
			best, bestCount = value, count
		}
	}
	return best
}
