package portfolio

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"WolfDesk/internal/model"
)

// DefaultHoldings seeds a fresh portfolio.
func DefaultHoldings() []model.Holding {
	return []model.Holding{
		{Ticker: "HPG", CostBasis: 28.5, Target: 35.0, StopLoss: 26.5},
		{Ticker: "SSI", CostBasis: 34.0, Target: 42.0, StopLoss: 31.0},
	}
}

// LoadState reads the portfolio from a JSON file. Returns nil state if the file doesn't exist.
func LoadState(filePath string) (*model.PortfolioState, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var state model.PortfolioState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// SaveState writes the portfolio to a JSON file, creating its directory.
func SaveState(filePath string, state *model.PortfolioState) error {
	state.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(filePath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(filePath, data, 0o644)
}
