package dto

import (
	"autostreamml/internal/core/domain"
)

type ColumnResponse struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

type DatasetResponse struct {
	Rows               int              `json:"rows"`
	Columns            int              `json:"columns"`
	Fingerprint        string           `json:"fingerprint"`
	Schema             []ColumnResponse `json:"schema"`
	CategoricalColumns []string         `json:"categorical_columns"`
	Header             []string         `json:"header"`
	Preview            [][]string       `json:"preview"`
}

type TargetsResponse struct {
	Targets []ColumnResponse `json:"targets"`
}

func ToColumnResponses(cols []domain.Column) []ColumnResponse {
	out := make([]ColumnResponse, 0, len(cols))
	for _, c := range cols {
		out = append(out, ColumnResponse{Name: c.Name, Kind: string(c.Kind)})
	}
	return out
}

// ToDatasetResponse summarizes ds with at most previewRows leading rows.
func ToDatasetResponse(ds *domain.Dataset, previewRows int) DatasetResponse {
	categorical := ds.CategoricalColumns()
	if categorical == nil {
		categorical = []string{}
	}
	return DatasetResponse{
		Rows:               ds.NumRows(),
		Columns:            ds.NumColumns(),
		Fingerprint:        ds.Fingerprint(),
		Schema:             ToColumnResponses(ds.Columns),
		CategoricalColumns: categorical,
		Header:             ds.ColumnNames(),
		Preview:            ds.Head(previewRows),
	}
}
