package domain

import "time"

type AlertType string

const (
	AlertConstant        AlertType = "CONSTANT"
	AlertUnique          AlertType = "UNIQUE"
	AlertHighCardinality AlertType = "HIGH_CARDINALITY"
	AlertMissing         AlertType = "MISSING"
	AlertZeros           AlertType = "ZEROS"
	AlertInfinite        AlertType = "INFINITE"
	AlertSkewed          AlertType = "SKEWED"
	AlertHighCorrelation AlertType = "HIGH_CORRELATION"
)

type Alert struct {
	Type    AlertType `json:"type"`
	Column  string    `json:"column"`
	Message string    `json:"message"`
}

type Overview struct {
	Rows             int     `json:"rows"`
	Columns          int     `json:"columns"`
	MissingCells     int     `json:"missing_cells"`
	MissingPercent   float64 `json:"missing_percent"`
	DuplicateRows    int     `json:"duplicate_rows"`
	DuplicatePercent float64 `json:"duplicate_percent"`
	NumericColumns   int     `json:"numeric_columns"`
	CategoricalCols  int     `json:"categorical_columns"`
	MemoryBytes      int64   `json:"memory_bytes"`
}

type HistogramBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

type NumericSummary struct {
	Mean      float64        `json:"mean"`
	Std       float64        `json:"std"`
	Min       float64        `json:"min"`
	P5        float64        `json:"p5"`
	Q1        float64        `json:"q1"`
	Median    float64        `json:"median"`
	Q3        float64        `json:"q3"`
	P95       float64        `json:"p95"`
	Max       float64        `json:"max"`
	Range     float64        `json:"range"`
	IQR       float64        `json:"iqr"`
	CV        float64        `json:"cv"`
	Skewness  float64        `json:"skewness"`
	Kurtosis  float64        `json:"kurtosis"`
	Sum       float64        `json:"sum"`
	Zeros     int            `json:"zeros"`
	Infinite  int            `json:"infinite"`
	Negatives int            `json:"negatives"`
	Histogram []HistogramBin `json:"histogram"`
}

type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

type CategoricalSummary struct {
	TopValues  []ValueCount `json:"top_values"`
	MaxLength  int          `json:"max_length"`
	MeanLength float64      `json:"mean_length"`
}

type VariableProfile struct {
	Name            string              `json:"name"`
	Kind            ColumnKind          `json:"kind"`
	Distinct        int                 `json:"distinct"`
	DistinctPercent float64             `json:"distinct_percent"`
	Missing         int                 `json:"missing"`
	MissingPercent  float64             `json:"missing_percent"`
	Numeric         *NumericSummary     `json:"numeric,omitempty"`
	Categorical     *CategoricalSummary `json:"categorical,omitempty"`
}

type Correlations struct {
	Columns []string    `json:"columns"`
	Matrix  [][]float64 `json:"matrix"`
}

// ProfileReport is the exploratory analysis of one dataset.
type ProfileReport struct {
	Title        string            `json:"title"`
	GeneratedAt  time.Time         `json:"generated_at"`
	Fingerprint  string            `json:"fingerprint"`
	Overview     Overview          `json:"overview"`
	Variables    []VariableProfile `json:"variables"`
	Correlations *Correlations     `json:"correlations,omitempty"`
	Alerts       []Alert           `json:"alerts"`
	Header       []string          `json:"header"`
	HeadRows     [][]string        `json:"head_rows"`
	TailRows     [][]string        `json:"tail_rows"`
}
