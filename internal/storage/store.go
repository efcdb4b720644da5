// Package storage persists rollout runs: one directory per run holding
// JSON metadata and a CSV of per-agent reward traces.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/splitsim/internal/experiment"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Model      string             `json:"model"`
	Scheme     string             `json:"scheme"`
	Policy     string             `json:"policy"`
	Depth      int                `json:"depth"`
	Seed       int64              `json:"seed"`
	Timestamp  time.Time          `json:"timestamp"`
	AgentIDs   []string           `json:"agent_ids"`
	Episodes   int                `json:"episodes"`
	Steps      int                `json:"steps"`
	Terminated int                `json:"terminated"`
	Truncated  int                `json:"truncated"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Save writes one run and returns its generated id.
func (s *Store) Save(model, scheme, policy string, depth int, seed int64, result *experiment.Result) (string, error) {
	runID := fmt.Sprintf("%s-%d", model, time.Now().UnixNano())
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Model:      model,
		Scheme:     scheme,
		Policy:     policy,
		Depth:      depth,
		Seed:       seed,
		Timestamp:  time.Now(),
		AgentIDs:   result.AgentIDs,
		Episodes:   result.Episodes,
		Steps:      result.Steps,
		Terminated: result.Terminated,
		Truncated:  result.Truncated,
		Metrics:    result.Metrics,
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "rewards.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	header := []string{"time"}
	for _, id := range result.AgentIDs {
		header = append(header, "reward_"+id)
	}
	header = append(header, "reward_global")
	if err := w.Write(header); err != nil {
		return "", err
	}

	for i := range result.Times {
		row := []string{strconv.FormatFloat(result.Times[i], 'f', 6, 64)}
		for _, id := range result.AgentIDs {
			row = append(row, strconv.FormatFloat(result.Rewards[id][i], 'f', 6, 64))
		}
		row = append(row, strconv.FormatFloat(result.GlobalReward[i], 'f', 6, 64))
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return runID, nil
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}
		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}
		runs = append(runs, meta)
	}

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadRewards reads back the reward traces: times, one series per agent
// in metadata order, and the global series.
func (s *Store) LoadRewards(runID string) ([]float64, map[string][]float64, []float64, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "rewards.csv"))
	if err != nil {
		return nil, nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, nil, err
	}
	if len(records) < 2 {
		return []float64{}, map[string][]float64{}, []float64{}, nil
	}

	header := records[0]
	agentCols := header[1 : len(header)-1]

	times := make([]float64, 0, len(records)-1)
	rewards := make(map[string][]float64, len(agentCols))
	global := make([]float64, 0, len(records)-1)

	for _, record := range records[1:] {
		if len(record) != len(header) {
			return nil, nil, nil, fmt.Errorf("storage: malformed row in %s", runID)
		}
		tv, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, nil, nil, err
		}
		times = append(times, tv)

		for i, col := range agentCols {
			v, err := strconv.ParseFloat(record[i+1], 64)
			if err != nil {
				return nil, nil, nil, err
			}
			id := col[len("reward_"):]
			rewards[id] = append(rewards[id], v)
		}

		gv, err := strconv.ParseFloat(record[len(record)-1], 64)
		if err != nil {
			return nil, nil, nil, err
		}
		global = append(global, gv)
	}

	return times, rewards, global, nil
}
