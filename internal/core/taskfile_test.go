package core

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/valter-silva-au/iar/pkg/models"
)

const sampleTaskFile = `# header comment
NAME: Juan Dela Cruz
POSITION: Administrative Officer II
OFFICE: Records Section
YEAR: 2025
MONTH: 11
PERIOD: 2
API_KEY: hf_file
USE_OLLAMA: yes
OLLAMA_MODEL: mistral
REVIEWED_BY: Maria Santos\nDivision Chief
unknown line without colon

# ===== TASKS =====
Prepare the onboarding plan Nov 17-19

Meeting notes: budget review
# comment inside tasks
Review pull requests
`

func TestParseTaskFile(t *testing.T) {
	tf, err := ParseTaskFile(strings.NewReader(sampleTaskFile))
	if err != nil {
		t.Fatalf("ParseTaskFile: %v", err)
	}

	wantEmployee := models.Employee{Name: "Juan Dela Cruz", Position: "Administrative Officer II", Office: "Records Section"}
	if diff := cmp.Diff(wantEmployee, tf.Employee); diff != "" {
		t.Errorf("employee mismatch (-want +got):\n%s", diff)
	}
	if tf.Year == nil || *tf.Year != 2025 {
		t.Errorf("Year = %v", tf.Year)
	}
	if tf.Month == nil || *tf.Month != 11 {
		t.Errorf("Month = %v", tf.Month)
	}
	if tf.Period == nil || *tf.Period != 2 {
		t.Errorf("Period = %v", tf.Period)
	}
	if tf.APIKey != "hf_file" || tf.OllamaModel != "mistral" {
		t.Errorf("APIKey = %q, OllamaModel = %q", tf.APIKey, tf.OllamaModel)
	}
	if tf.UseOllama == nil || !*tf.UseOllama {
		t.Errorf("UseOllama = %v", tf.UseOllama)
	}
	if tf.Signatories.ReviewedBy != `Maria Santos\nDivision Chief` {
		t.Errorf("ReviewedBy = %q", tf.Signatories.ReviewedBy)
	}

	wantTasks := []string{
		"Prepare the onboarding plan Nov 17-19",
		"Meeting notes: budget review",
		"Review pull requests",
	}
	if diff := cmp.Diff(wantTasks, tf.Tasks); diff != "" {
		t.Errorf("tasks mismatch (-want +got):\n%s", diff)
	}
}

func TestParseTaskFile_ShortMarkerAndBadNumbers(t *testing.T) {
	in := "year: soon\nMonth: 13\n# TASKS\nFile reports\n"
	tf, err := ParseTaskFile(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ParseTaskFile: %v", err)
	}
	if tf.Year != nil {
		t.Errorf("non-numeric year should stay nil, got %d", *tf.Year)
	}
	// Range checks belong to the caller; the file only records the number.
	if tf.Month == nil || *tf.Month != 13 {
		t.Errorf("Month = %v", tf.Month)
	}
	if diff := cmp.Diff([]string{"File reports"}, tf.Tasks); diff != "" {
		t.Errorf("tasks mismatch (-want +got):\n%s", diff)
	}
}

func TestParseTaskFile_NoMarkerMeansNoTasks(t *testing.T) {
	tf, err := ParseTaskFile(strings.NewReader("NAME: Juan\nFile reports\n"))
	if err != nil {
		t.Fatalf("ParseTaskFile: %v", err)
	}
	if len(tf.Tasks) != 0 {
		t.Errorf("expected no tasks, got %v", tf.Tasks)
	}
}

func TestLoadTaskFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.txt")
	if err := os.WriteFile(path, []byte(sampleTaskFile), 0o644); err != nil {
		t.Fatal(err)
	}
	tf, err := LoadTaskFile(path)
	if err != nil {
		t.Fatalf("LoadTaskFile: %v", err)
	}
	if len(tf.Tasks) != 3 {
		t.Errorf("got %d tasks, want 3", len(tf.Tasks))
	}

	if _, err := LoadTaskFile(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestTaskFile_ApplyTo(t *testing.T) {
	cfg := DefaultGlobalConfig()
	cfg.Employee = models.Employee{Name: "Config Name", Position: "Config Position", Office: "Config Office"}
	cfg.Signatories.ApprovedBy = "Config Approver"

	no := false
	tf := &TaskFile{
		Employee:      models.Employee{Name: "File Name"},
		Signatories:   models.Signatories{ReviewedBy: "File Reviewer"},
		APIKey:        "hf_file",
		UseOllama:     &no,
		OllamaBaseURL: "http://gpu-box:11434",
	}
	cfg.Enhancer.Offline.Enabled = true
	tf.ApplyTo(cfg)

	wantEmployee := models.Employee{Name: "File Name", Position: "Config Position", Office: "Config Office"}
	if diff := cmp.Diff(wantEmployee, cfg.Employee); diff != "" {
		t.Errorf("employee mismatch (-want +got):\n%s", diff)
	}
	wantSignatories := models.Signatories{ReviewedBy: "File Reviewer", ApprovedBy: "Config Approver"}
	if diff := cmp.Diff(wantSignatories, cfg.Signatories); diff != "" {
		t.Errorf("signatories mismatch (-want +got):\n%s", diff)
	}
	if cfg.Enhancer.Hosted.APIKey != "hf_file" {
		t.Errorf("APIKey = %q", cfg.Enhancer.Hosted.APIKey)
	}
	if cfg.Enhancer.Offline.Enabled {
		t.Error("USE_OLLAMA: false should disable the offline backend")
	}
	if cfg.Enhancer.Offline.BaseURL != "http://gpu-box:11434" || cfg.Enhancer.Offline.Model != "llama3.1" {
		t.Errorf("offline = %+v", cfg.Enhancer.Offline)
	}
}

func TestParseTaskFile_LongLines(t *testing.T) {
	long := "Compiled " + strings.Repeat("inventory records ", 10000) + "Nov 24"
	input := "NAME: Juan\n# TASKS\n" + long + "\nfile reports"

	tf, err := ParseTaskFile(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseTaskFile: %v", err)
	}
	want := []string{strings.TrimSpace(long), "file reports"}
	if diff := cmp.Diff(want, tf.Tasks); diff != "" {
		t.Errorf("tasks mismatch (-want +got):\n%s", diff)
	}
	if tf.Employee.Name != "Juan" {
		t.Errorf("name = %q", tf.Employee.Name)
	}
}
