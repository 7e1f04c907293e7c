package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/crossplc/crossplc/internal/ir"
	"github.com/crossplc/crossplc/internal/stfront"
)

// Error codes used in CLI error output.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeNotFound    = "E002" // Path not found
	ErrCodeUnsupported = "E003" // Unsupported file format
	ErrCodeParseFailed = "E004" // Project parse failed
	ErrCodeWriteFailed = "E005" // File write error
	ErrCodeStoreFailed = "E006" // Run archive error
	ErrCodeNoFSM       = "E007" // No state machine extractable
)

// LoadError is a project loading failure with a stable code the JSON
// output carries through.
type LoadError struct {
	Code    string
	Path    string
	Message string
}

func (e *LoadError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Path, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadProject reads one project file. Format is chosen by extension:
// .st is OpenPLC Structured Text, .json is a serialized IR project.
func LoadProject(path string) (*ir.Project, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Path: path, Message: "file not found"}
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".st":
		p, err := stfront.Parse(path)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeParseFailed, Path: path, Message: err.Error()}
		}
		return p, nil

	case ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeParseFailed, Path: path, Message: err.Error()}
		}
		var p ir.Project
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, &LoadError{Code: ErrCodeParseFailed, Path: path, Message: err.Error()}
		}
		if p.Controller.Name == "" {
			p.Controller.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}
		return &p, nil

	default:
		return nil, &LoadError{
			Code: ErrCodeUnsupported, Path: path,
			Message: "unsupported file format (expected .st or .json)",
		}
	}
}

// LoadProjects loads a set of project files keyed by controller name.
// All paths are attempted; every failure is collected.
func LoadProjects(paths []string) (map[string]*ir.Project, []error) {
	projects := make(map[string]*ir.Project, len(paths))
	var errs []error

	for _, path := range paths {
		p, err := LoadProject(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		projects[p.Controller.Name] = p
	}
	return projects, errs
}
