package holdings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/allenshen-svg/fund-assistant/internal/model"
)

// fileState is the on-disk holdings document.
type fileState struct {
	Holdings  []model.Holding `json:"holdings"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// LoadState reads holdings from a JSON file. Returns exists=false if the file doesn't exist.
func LoadState(filePath string) (holdings []model.Holding, exists bool, err error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var st fileState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, true, fmt.Errorf("decode holdings %s: %w", filePath, err)
	}
	return st.Holdings, true, nil
}

// SaveState writes holdings to a JSON file via a temp file and rename.
func SaveState(filePath string, holdings []model.Holding) error {
	st := fileState{Holdings: holdings, UpdatedAt: time.Now()}
	if st.Holdings == nil {
		st.Holdings = []model.Holding{}
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(filePath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	tmp := filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, filePath)
}
