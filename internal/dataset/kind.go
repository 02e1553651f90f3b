package dataset

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies one of the fixed datasets served by the dashboard.
type Kind string

const (
	Hospital  Kind = "hospital"
	School    Kind = "school"
	Preschool Kind = "preschool"
)

// Column names shared by every dataset.
const (
	ColumnRegion              = "region"
	ColumnDistrict            = "district"
	ColumnSatisfaction        = "satisfaction"
	ColumnInfrastructureScore = "infrastructure_score"
	ColumnResourcesScore      = "resources_score"
	ColumnPopulationScore     = "population_score"
	ColumnAgeScore            = "age_score"
)

var (
	ErrUnknownDataset  = errors.New("UNKNOWN_DATASET")
	ErrDatasetNotFound = errors.New("DATASET_NOT_FOUND")
)

type kindInfo struct {
	display      string
	entityColumn string
}

var kindInfos = map[Kind]kindInfo{
	Hospital:  {display: "Hospital", entityColumn: "hospital_name"},
	School:    {display: "School", entityColumn: "school_name"},
	Preschool: {display: "Preschool", entityColumn: "kindergarten_name"},
}

// Kinds returns all datasets in a stable order.
func Kinds() []Kind {
	return []Kind{Hospital, School, Preschool}
}

// ParseKind accepts a dataset key ("hospital") or its route slug ("hospital-data").
func ParseKind(s string) (Kind, error) {
	key := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "-data")
	k := Kind(key)
	if _, ok := kindInfos[k]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownDataset, s)
	}
	return k, nil
}

func (k Kind) String() string { return string(k) }

// DisplayName is the capitalized name used in user-facing messages.
func (k Kind) DisplayName() string {
	if info, ok := kindInfos[k]; ok {
		return info.display
	}
	return string(k)
}

// EntityColumn names the column holding the facility name.
func (k Kind) EntityColumn() string {
	return kindInfos[k].entityColumn
}

// Slug is the path segment of the dataset's API route.
func (k Kind) Slug() string {
	return string(k) + "-data"
}

// FilterColumns lists the query parameters accepted as filters for k.
func (k Kind) FilterColumns() []string {
	return []string{ColumnRegion, ColumnDistrict, k.EntityColumn()}
}
