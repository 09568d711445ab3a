package types

// Config holds engine configuration merged from config files and
// environment variables.
type Config struct {
	Schema     string                   `json:"$schema,omitempty"`
	ServerURL  string                   `json:"serverURL,omitempty"`
	Directory  string                   `json:"directory,omitempty"`
	LogLevel   string                   `json:"logLevel,omitempty"`
	HistoryDir string                   `json:"historyDir,omitempty"`
	Command    map[string]CommandConfig `json:"command,omitempty"`
}

// CommandConfig is a command declared directly in the config file.
type CommandConfig struct {
	Template    string `json:"template"`
	Description string `json:"description,omitempty"`
	Agent       string `json:"agent,omitempty"`
	Model       string `json:"model,omitempty"`
}
