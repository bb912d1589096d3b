package core

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"text/template"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/valter-silva-au/iar/pkg/models"
)

// SampleTaskFileName is the task file written by Init.
const SampleTaskFileName = "tasks.txt"

// InitConfig holds the parameters for initializing a report workspace.
type InitConfig struct {
	BasePath    string
	Employee    models.Employee
	Signatories models.Signatories
	// Now fixes the period used in the sample task file. Zero means today.
	Now time.Time
}

// InitResult holds a summary of what was created vs. skipped.
type InitResult struct {
	Created []string
	Skipped []string
}

// ProjectInitializer writes a starter configuration and task file.
type ProjectInitializer interface {
	Init(config InitConfig) (*InitResult, error)
}

type projectInitializer struct {
	taskTmpl *template.Template
}

// NewProjectInitializer creates a new ProjectInitializer.
func NewProjectInitializer() ProjectInitializer {
	return &projectInitializer{
		taskTmpl: template.Must(template.New(SampleTaskFileName).Parse(sampleTaskTemplate)),
	}
}

// starterConfig mirrors models.GlobalConfig with a readable timeout.
type starterConfig struct {
	Employee    models.Employee    `yaml:"employee"`
	Signatories models.Signatories `yaml:"signatories"`
	Enhancer    struct {
		Offline             models.OfflineConfig `yaml:"offline"`
		Hosted              models.HostedConfig  `yaml:"hosted"`
		Timeout             string               `yaml:"timeout"`
		SimilarityThreshold float64              `yaml:"similarity_threshold"`
	} `yaml:"enhancer"`
	Output models.OutputConfig `yaml:"output"`
}

const sampleTaskTemplate = `# Individual Accomplishment Report task file.
# Header lines use KEY: value. Values here override .iarconfig.
NAME: {{ .Employee.Name }}
POSITION: {{ .Employee.Position }}
OFFICE: {{ .Employee.Office }}
YEAR: {{ .Year }}
MONTH: {{ .Month }}
# 1 = days 1-15, 2 = day 16 to the end of the month
PERIOD: {{ .Half }}

# ===== TASKS =====
# One task per line. Mention a date (Nov 17, 11/17, Nov 17-19) to pin a
# task to that week; other tasks are spread evenly across the period.
{{- range .Tasks }}
{{ . }}
{{- end }}
`

// Init writes .iarconfig, a sample task file and a .gitignore into
// BasePath. Files that already exist are skipped and not overwritten.
func (pi *projectInitializer) Init(config InitConfig) (*InitResult, error) {
	result := &InitResult{}

	if err := os.MkdirAll(config.BasePath, 0o750); err != nil {
		return nil, fmt.Errorf("initializing workspace: creating %s: %w", config.BasePath, err)
	}

	configPath := filepath.Join(config.BasePath, ConfigFileName)
	if err := writeFileIfNotExists(configPath, func() ([]byte, error) {
		return renderStarterConfig(config)
	}, result); err != nil {
		return nil, err
	}

	tasksPath := filepath.Join(config.BasePath, SampleTaskFileName)
	if err := writeFileIfNotExists(tasksPath, func() ([]byte, error) {
		return pi.renderSampleTasks(config)
	}, result); err != nil {
		return nil, err
	}

	gitignorePath := filepath.Join(config.BasePath, ".gitignore")
	if err := writeFileIfNotExists(gitignorePath, func() ([]byte, error) {
		return []byte(".iar_events.jsonl\nACCOMPLISHMENT_REPORT_*\n"), nil
	}, result); err != nil {
		return nil, err
	}

	return result, nil
}

func renderStarterConfig(config InitConfig) ([]byte, error) {
	defaults := DefaultGlobalConfig()

	var sc starterConfig
	sc.Employee = config.Employee
	sc.Signatories = config.Signatories
	sc.Enhancer.Offline = defaults.Enhancer.Offline
	sc.Enhancer.Hosted = defaults.Enhancer.Hosted
	sc.Enhancer.Timeout = defaults.Enhancer.Timeout.String()
	sc.Enhancer.SimilarityThreshold = defaults.Enhancer.SimilarityThreshold
	sc.Output = defaults.Output

	var buf bytes.Buffer
	buf.WriteString("# iar configuration. Environment variables prefixed with IAR_ override\n")
	buf.WriteString("# these values (e.g. IAR_ENHANCER_HOSTED_API_KEY); HF_TOKEN is also read.\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(sc); err != nil {
		return nil, fmt.Errorf("encoding starter config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding starter config: %w", err)
	}
	return buf.Bytes(), nil
}

func (pi *projectInitializer) renderSampleTasks(config InitConfig) ([]byte, error) {
	now := config.Now
	if now.IsZero() {
		now = time.Now()
	}
	half := models.FirstHalf
	if now.Day() > 15 {
		half = models.SecondHalf
	}
	month := now.Month().String()[:3]
	data := struct {
		Employee models.Employee
		Year     int
		Month    int
		Half     int
		Tasks    []string
	}{
		Employee: config.Employee,
		Year:     now.Year(),
		Month:    int(now.Month()),
		Half:     int(half),
		Tasks: []string{
			fmt.Sprintf("Prepare the monthly inventory report %s %d", month, now.Day()),
			"Attend the weekly coordination meeting",
			"Review and file incoming communications",
		},
	}

	var buf bytes.Buffer
	if err := pi.taskTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("rendering %s: %w", SampleTaskFileName, err)
	}
	return buf.Bytes(), nil
}

// writeFileIfNotExists writes content from contentFn if the file does not exist.
// It records created/skipped in the result.
func writeFileIfNotExists(path string, contentFn func() ([]byte, error), result *InitResult) error {
	if _, err := os.Stat(path); err == nil {
		result.Skipped = append(result.Skipped, path)
		return nil
	}
	content, err := contentFn()
	if err != nil {
		return fmt.Errorf("initializing workspace: generating content for %s: %w", path, err)
	}
	if err := os.WriteFile(path, content, 0o600); err != nil {
		return fmt.Errorf("initializing workspace: writing %s: %w", path, err)
	}
	result.Created = append(result.Created, path)
	return nil
}
