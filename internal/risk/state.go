package risk

import (
	"encoding/json"
	"os"

	"CryptoSentry/internal/model"
)

// LoadStats reads the daily ledger record from a JSON file. A missing file
// yields a zero record; the caller's rollover replaces it with today's.
func LoadStats(filePath string) (model.DailyStats, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return model.DailyStats{}, nil
		}
		return model.DailyStats{}, err
	}
	var stats model.DailyStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return model.DailyStats{}, err
	}
	if stats.Version == 0 {
		stats.Version = model.DailyStatsVersion
	}
	return stats, nil
}

// SaveStats writes the record to a JSON file, whole-object overwrite.
func SaveStats(filePath string, stats model.DailyStats) error {
	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, data, 0644)
}
