// Command workflowgen prints the GitHub Actions workflow that tests ecsfs and
// builds release binaries of `cmd/ecsfs`:
//
//	go run ./cmd/workflowgen > .github/workflows/ci.yaml
package main

import (
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const goVersion = "1.18"

type PushTrigger struct {
	Branches []string `yaml:"branches,omitempty"`
	Tags     []string `yaml:"tags,omitempty"`
}

type Trigger struct {
	Push PushTrigger `yaml:"push,omitempty"`
}

type Args map[string]interface{}

type Step struct {
	Name string            `yaml:"name,omitempty"`
	If   string            `yaml:"if,omitempty"`
	Uses string            `yaml:"uses,omitempty"`
	ID   string            `yaml:"id,omitempty"`
	Run  string            `yaml:"run,omitempty"`
	Env  map[string]string `yaml:"env,omitempty"`
	With Args              `yaml:"with,omitempty"`
}

type Job struct {
	RunsOn string   `yaml:"runs-on"`
	Needs  []string `yaml:"needs,omitempty"`
	If     string   `yaml:"if,omitempty"`
	Steps  []Step   `yaml:"steps"`
}

type Workflow struct {
	Name string         `yaml:"name"`
	On   Trigger        `yaml:"on,omitempty"`
	Jobs map[string]Job `yaml:"jobs"`
}

// Target is a platform the CLI is released for.
type Target struct {
	OS   string
	Arch string
}

func (t Target) JobName() string { return fmt.Sprintf("release-%s-%s", t.OS, t.Arch) }

func (t Target) Binary() string { return fmt.Sprintf("ecsfs-%s-%s", t.OS, t.Arch) }

// WorkflowCI runs the tests on every push and, for version tags, builds one
// binary per target once the tests pass.
func WorkflowCI(targets ...Target) Workflow {
	jobs := make(map[string]Job, len(targets)+1)
	jobs["test"] = JobTest()
	for _, target := range targets {
		jobs[target.JobName()] = JobRelease(target)
	}
	return Workflow{
		Name: "ci",
		On: Trigger{
			Push: PushTrigger{
				Branches: []string{"*"},
				Tags:     []string{"v*"},
			},
		},
		Jobs: jobs,
	}
}

func setupSteps() []Step {
	return []Step{{
		Name: "Checkout",
		Uses: "actions/checkout@v3",
	}, {
		Name: "Set up Go",
		Uses: "actions/setup-go@v3",
		With: Args{"go-version": goVersion},
	}}
}

func JobTest() Job {
	return Job{
		RunsOn: "ubuntu-latest",
		Steps: append(setupSteps(), Step{
			Name: "Vet",
			Run:  "go vet ./...",
		}, Step{
			Name: "Test",
			Run:  "go test ./...",
		}),
	}
}

func JobRelease(target Target) Job {
	return Job{
		RunsOn: "ubuntu-latest",
		Needs:  []string{"test"},
		If:     "startsWith(github.ref, 'refs/tags/v')",
		Steps: append(setupSteps(), Step{
			Name: "Build",
			Run:  fmt.Sprintf("go build -o %s ./cmd/ecsfs", target.Binary()),
			Env: map[string]string{
				"CGO_ENABLED": "0",
				"GOOS":        target.OS,
				"GOARCH":      target.Arch,
			},
		}, Step{
			Name: "Upload",
			Uses: "actions/upload-artifact@v3",
			With: Args{
				"name": target.Binary(),
				"path": target.Binary(),
			},
		}),
	}
}

func MarshalToWriter(w io.Writer, v interface{}) error {
	yamlEncoder := yaml.NewEncoder(w)
	yamlEncoder.SetIndent(2)
	if err := yamlEncoder.Encode(v); err != nil {
		return fmt.Errorf("marshaling to YAML: %w", err)
	}
	return yamlEncoder.Close()
}

func main() {
	if err := MarshalToWriter(
		os.Stdout,
		WorkflowCI(
			Target{OS: "linux", Arch: "amd64"},
			Target{OS: "linux", Arch: "arm64"},
			Target{OS: "darwin", Arch: "arm64"},
		),
	); err != nil {
		log.Fatalf("marshaling ci workflow: %v", err)
	}
}
