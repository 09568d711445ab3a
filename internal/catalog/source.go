package catalog

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/opencode-ai/commandbar/internal/project"
	"github.com/opencode-ai/commandbar/pkg/types"
)

// Source supplies dynamically-registered commands. A source may fail (for
// example a remote lookup); callers degrade to built-ins only instead of
// propagating the error.
type Source interface {
	List(ctx context.Context) ([]types.Command, error)
}

// ConfigSource serves commands declared in the config file.
type ConfigSource struct {
	cfg *types.Config
}

// NewConfigSource creates a source backed by config-declared commands.
func NewConfigSource(cfg *types.Config) *ConfigSource {
	return &ConfigSource{cfg: cfg}
}

// List returns the config-declared commands.
func (s *ConfigSource) List(ctx context.Context) ([]types.Command, error) {
	if s.cfg == nil || len(s.cfg.Command) == 0 {
		return nil, nil
	}

	commands := make([]types.Command, 0, len(s.cfg.Command))
	for name, cfg := range s.cfg.Command {
		commands = append(commands, types.Command{
			Name:        name,
			Description: cfg.Description,
			Template:    cfg.Template,
			Agent:       cfg.Agent,
			Model:       cfg.Model,
			Source:      types.SourceConfig,
		})
	}
	return commands, nil
}

// FileSource serves commands defined as markdown files under
// <root>/.opencode/command/, where root is the project root for workDir.
// Nested files get ":"-separated names (deploy/staging.md becomes
// "deploy:staging").
type FileSource struct {
	workDir string
}

// NewFileSource creates a source backed by markdown command files.
func NewFileSource(workDir string) *FileSource {
	root, err := project.Root(workDir)
	if err != nil {
		root = workDir
	}
	return &FileSource{workDir: root}
}

// CommandDir returns the directory this source reads from.
func (s *FileSource) CommandDir() string {
	return filepath.Join(s.workDir, ".opencode", "command")
}

// List parses all command files. Individual files that fail to parse are
// skipped; a missing directory yields an empty list.
func (s *FileSource) List(ctx context.Context) ([]types.Command, error) {
	commandDir := s.CommandDir()
	if _, err := os.Stat(commandDir); os.IsNotExist(err) {
		return nil, nil
	}

	paths, err := doublestar.Glob(os.DirFS(commandDir), "**/*.md")
	if err != nil {
		return nil, err
	}

	var commands []types.Command
	for _, rel := range paths {
		cmd, err := parseCommandFile(filepath.Join(commandDir, rel))
		if err != nil {
			continue
		}

		name := strings.TrimSuffix(rel, ".md")
		cmd.Name = strings.ReplaceAll(name, "/", ":")
		cmd.Source = types.SourceFile
		commands = append(commands, cmd)
	}

	return commands, nil
}

// frontmatter is the YAML header of a command file.
type frontmatter struct {
	Description string `yaml:"description"`
	Agent       string `yaml:"agent"`
	Model       string `yaml:"model"`
}

// parseCommandFile reads a markdown command definition: an optional YAML
// frontmatter block followed by the prompt template body. Files without
// frontmatter are treated as pure templates.
func parseCommandFile(path string) (types.Command, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Command{}, err
	}

	content := string(data)
	cmd := types.Command{Template: strings.TrimSpace(content)}

	rest, ok := strings.CutPrefix(content, "---\n")
	if !ok {
		return cmd, nil
	}
	header, body, ok := strings.Cut(rest, "\n---")
	if !ok {
		return cmd, nil
	}

	var fm frontmatter
	if err := yaml.Unmarshal([]byte(header), &fm); err != nil {
		// Malformed frontmatter: fall back to treating the whole file
		// as a template, matching the no-frontmatter path.
		return cmd, nil
	}

	cmd.Description = fm.Description
	cmd.Agent = fm.Agent
	cmd.Model = fm.Model
	cmd.Template = strings.TrimSpace(strings.TrimPrefix(body, "\n"))
	return cmd, nil
}
