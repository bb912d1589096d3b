package core

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/valter-silva-au/iar/pkg/models"
)

// TaskFile is the content of a plain-text task input file:
//
//	NAME: Juan Dela Cruz
//	YEAR: 2025
//	MONTH: 11
//	PERIOD: 2
//	# ===== TASKS =====
//	Prepare the onboarding plan Nov 17-19
//	Review pull requests
//
// Header values that are absent or not numeric where a number is expected
// stay nil/empty so callers can fall back to config or prompts.
type TaskFile struct {
	Employee    models.Employee
	Signatories models.Signatories
	Year        *int
	Month       *int
	// Period is 1 for days 1-15 and 2 for the rest of the month.
	Period        *int
	APIKey        string
	UseOllama     *bool
	OllamaModel   string
	OllamaBaseURL string
	Tasks         []string
}

// LoadTaskFile reads and parses the task file at path.
func LoadTaskFile(path string) (*TaskFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening task file %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	tf, err := ParseTaskFile(f)
	if err != nil {
		return nil, fmt.Errorf("parsing task file %s: %w", path, err)
	}
	return tf, nil
}

// ParseTaskFile parses the task file format. "KEY: value" lines set header
// fields until a "# TASKS" or "# ===== TASKS =====" comment line; every
// non-empty, non-comment line after it is a task, colons included.
func ParseTaskFile(r io.Reader) (*TaskFile, error) {
	tf := &TaskFile{}
	inTasks := false

	// Task lines may exceed bufio.Scanner's token limit.
	reader := bufio.NewReader(r)
	for {
		raw, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, err
		}
		if line := strings.TrimSpace(raw); line != "" {
			inTasks = tf.parseLine(line, inTasks)
		}
		if err == io.EOF {
			return tf, nil
		}
	}
}

// parseLine applies one non-empty line and reports whether the tasks
// section has started.
func (tf *TaskFile) parseLine(line string, inTasks bool) bool {
	if strings.HasPrefix(line, "#") {
		upper := strings.ToUpper(line)
		return inTasks || strings.Contains(upper, "===== TASKS =====") || upper == "# TASKS"
	}
	if inTasks {
		tf.Tasks = append(tf.Tasks, line)
		return true
	}
	if key, value, ok := strings.Cut(line, ":"); ok {
		tf.set(strings.ToUpper(strings.TrimSpace(key)), strings.TrimSpace(value))
	}
	return false
}

func (tf *TaskFile) set(key, value string) {
	switch key {
	case "NAME":
		tf.Employee.Name = value
	case "POSITION":
		tf.Employee.Position = value
	case "OFFICE":
		tf.Employee.Office = value
	case "YEAR":
		tf.Year = parseOptionalInt(value)
	case "MONTH":
		tf.Month = parseOptionalInt(value)
	case "PERIOD":
		tf.Period = parseOptionalInt(value)
	case "API_KEY":
		tf.APIKey = value
	case "REVIEWED_BY":
		tf.Signatories.ReviewedBy = value
	case "VERIFIED_BY":
		tf.Signatories.VerifiedBy = value
	case "APPROVED_BY":
		tf.Signatories.ApprovedBy = value
	case "ACCEPTED_BY":
		tf.Signatories.AcceptedBy = value
	case "USE_OLLAMA":
		b := false
		switch strings.ToLower(value) {
		case "true", "yes", "1", "y":
			b = true
		}
		tf.UseOllama = &b
	case "OLLAMA_MODEL":
		tf.OllamaModel = value
	case "OLLAMA_BASE_URL":
		tf.OllamaBaseURL = value
	}
}

func parseOptionalInt(s string) *int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

// ApplyTo overlays the enhancer settings found in the file onto cfg.
func (tf *TaskFile) ApplyTo(cfg *models.GlobalConfig) {
	if tf.APIKey != "" {
		cfg.Enhancer.Hosted.APIKey = tf.APIKey
	}
	if tf.UseOllama != nil {
		cfg.Enhancer.Offline.Enabled = *tf.UseOllama
	}
	if tf.OllamaModel != "" {
		cfg.Enhancer.Offline.Model = tf.OllamaModel
	}
	if tf.OllamaBaseURL != "" {
		cfg.Enhancer.Offline.BaseURL = tf.OllamaBaseURL
	}
	mergeEmployee(&cfg.Employee, tf.Employee)
	mergeSignatories(&cfg.Signatories, tf.Signatories)
}

func mergeEmployee(dst *models.Employee, src models.Employee) {
	if src.Name != "" {
		dst.Name = src.Name
	}
	if src.Position != "" {
		dst.Position = src.Position
	}
	if src.Office != "" {
		dst.Office = src.Office
	}
}

func mergeSignatories(dst *models.Signatories, src models.Signatories) {
	if src.ReviewedBy != "" {
		dst.ReviewedBy = src.ReviewedBy
	}
	if src.VerifiedBy != "" {
		dst.VerifiedBy = src.VerifiedBy
	}
	if src.ApprovedBy != "" {
		dst.ApprovedBy = src.ApprovedBy
	}
	if src.AcceptedBy != "" {
		dst.AcceptedBy = src.AcceptedBy
	}
}
