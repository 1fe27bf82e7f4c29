package forecast

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/stonksapi/backend/internal/market"
)

// Model errors surfaced at the forecast boundary.
var (
	ErrModelNotFound = errors.New("model file not found for specified stock")
	ErrModelLoad     = errors.New("error loading model")
)

// Model is the opaque prediction capability: one scaled window in, the
// next scaled point out. Any trained regressor that can answer this
// fits behind the interface.
type Model interface {
	Predict(window []float64) (float64, error)
}

// LinearModel is the serialized artifact format the trainer produces:
// an autoregressive linear map over the input window. The engine never
// depends on this concrete type; it loads whatever the artifact holds
// behind the Model interface.
type LinearModel struct {
	Symbol    string    `json:"symbol"`
	Interval  string    `json:"interval"`
	SeqLength int       `json:"seq_length"`
	Weights   []float64 `json:"weights"`
	Bias      float64   `json:"bias"`
	TrainedAt time.Time `json:"trained_at"`
}

// Predict returns the model output for one window.
func (m *LinearModel) Predict(window []float64) (float64, error) {
	if len(window) != len(m.Weights) {
		return 0, fmt.Errorf("window length %d does not match model input size %d", len(window), len(m.Weights))
	}

	out := m.Bias
	for i, w := range m.Weights {
		out += w * window[i]
	}
	return out, nil
}

// validate rejects artifacts that cannot predict anything.
func (m *LinearModel) validate() error {
	if len(m.Weights) == 0 {
		return errors.New("artifact has no weights")
	}
	if m.SeqLength != 0 && m.SeqLength != len(m.Weights) {
		return fmt.Errorf("artifact seq_length %d does not match %d weights", m.SeqLength, len(m.Weights))
	}
	return nil
}

// Store resolves, loads and saves model artifacts on disk. Layout:
// one directory per symbol, one artifact per interval, named
// <interval>_<symbol>_best_model.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Path returns the artifact path for a (symbol, interval) pair.
func (s *Store) Path(symbol string, interval market.Interval) string {
	return filepath.Join(s.dir, symbol, fmt.Sprintf("%s_%s_best_model", interval, symbol))
}

// Exists reports whether a trained artifact is present.
func (s *Store) Exists(symbol string, interval market.Interval) bool {
	info, err := os.Stat(s.Path(symbol, interval))
	return err == nil && !info.IsDir()
}

// Load reads and validates the artifact for a (symbol, interval) pair.
func (s *Store) Load(symbol string, interval market.Interval) (Model, error) {
	path := s.Path(symbol, interval)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrModelNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrModelLoad, err)
	}

	var model LinearModel
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelLoad, err)
	}

	if err := model.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelLoad, err)
	}

	return &model, nil
}

// Save writes the artifact atomically: the payload goes to a temp file
// in the same directory and is renamed over the destination, so a
// forecast loading mid-save sees either the old artifact or the new
// one, never a torn write.
func (s *Store) Save(symbol string, interval market.Interval, model *LinearModel) error {
	if err := model.validate(); err != nil {
		return fmt.Errorf("refusing to save invalid artifact: %w", err)
	}

	path := s.Path(symbol, interval)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create model directory: %w", err)
	}

	data, err := json.MarshalIndent(model, "", "  ")
	if err != nil {
		return fmt.Errorf("encode model artifact: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".model-*")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp artifact: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace model artifact: %w", err)
	}

	return nil
}

// Symbols lists the symbols that have a model directory, in directory
// order. Used by the stock-overview read path.
func (s *Store) Symbols() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read models directory: %w", err)
	}

	var symbols []string
	for _, entry := range entries {
		if entry.IsDir() {
			symbols = append(symbols, entry.Name())
		}
	}
	return symbols, nil
}
