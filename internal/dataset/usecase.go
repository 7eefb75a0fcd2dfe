package dataset

import (
	"wine/internal/feature"
	"wine/internal/predict"
)

// DatasetRepository collects predictions for later offline analysis.
type DatasetRepository interface {
	Append(session string, rec feature.Record, p predict.Prediction)
	Close()
}

// NopDatasetRepository discards every prediction. Used when no dataset file
// is configured.
type NopDatasetRepository struct{}

func (NopDatasetRepository) Append(string, feature.Record, predict.Prediction) {}
func (NopDatasetRepository) Close()                                            {}
