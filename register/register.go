// Package register adds this server to an MCP client configuration file
// (.mcp.json for a project, ~/.claude.json for the user).
package register

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Scopes.
const (
	ScopeProject = "project"
	ScopeUser    = "user"
)

// ErrUsage is returned for malformed register arguments.
var ErrUsage = errors.New("invalid register arguments")

// Request is a parsed register command line.
type Request struct {
	Scope      string
	Directory  string   // project scope only, defaults to "."
	ServerArgs []string // everything after "--", forwarded to the server
}

type mcpServerEntry struct {
	Command string   `json:"command"`
	Args    []string `json:"args,omitempty"`
}

// Run executes the register subcommand. args is everything after "register".
// The resulting config path is reported on out.
func Run(serverName string, args []string, out io.Writer) error {
	request, err := ParseArgs(args)
	if err != nil {
		return err
	}

	binaryPath, err := detectBinaryPath()
	if err != nil {
		return fmt.Errorf("detecting binary path: %w", err)
	}

	configPath, err := Register(serverName, request, binaryPath)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Registered %q in %s\n", serverName, configPath)
	return nil
}

// Register writes the server entry for binaryPath and returns the config file it changed.
// A project registration pins the server to the project directory via --root
// unless the forwarded arguments already name one.
func Register(serverName string, request Request, binaryPath string) (string, error) {
	configPath, err := resolveConfigPath(request.Scope, request.Directory)
	if err != nil {
		return "", fmt.Errorf("resolving config path: %w", err)
	}

	serverArgs := request.ServerArgs
	if request.Scope == ScopeProject && !hasRootArg(serverArgs) {
		projectDir := filepath.Dir(configPath)
		serverArgs = append([]string{"--root", projectDir}, serverArgs...)
	}

	if err := writeConfig(configPath, serverName, buildEntry(binaryPath, serverArgs)); err != nil {
		return "", fmt.Errorf("writing config: %w", err)
	}
	return configPath, nil
}

// ParseArgs parses "project [directory] [-- args...]" or "user [-- args...]".
func ParseArgs(args []string) (Request, error) {
	if len(args) == 0 {
		return Request{}, fmt.Errorf("%w: missing scope", ErrUsage)
	}

	switch args[0] {
	case ScopeProject:
		directory, serverArgs := parseProjectArgs(args[1:])
		return Request{Scope: ScopeProject, Directory: directory, ServerArgs: serverArgs}, nil
	case ScopeUser:
		return Request{Scope: ScopeUser, ServerArgs: parseUserArgs(args[1:])}, nil
	default:
		return Request{}, fmt.Errorf("%w: unknown scope %q (must be %q or %q)", ErrUsage, args[0], ScopeProject, ScopeUser)
	}
}

// PrintUsage writes the register help text.
func PrintUsage(w io.Writer, binaryName string) {
	fmt.Fprintf(w, "Usage:\n")
	fmt.Fprintf(w, "  %s register project [directory]  # -> <directory>/.mcp.json (default: .)\n", binaryName)
	fmt.Fprintf(w, "  %s register user                 # -> ~/.claude.json\n", binaryName)
	fmt.Fprintf(w, "  %s register project . -- --flag  # forward args to server\n", binaryName)
	fmt.Fprintf(w, "  %s register user -- --flag       # forward args to server\n", binaryName)
}

// DeriveServerName extracts a server name from a binary path by stripping .exe and -mcp suffixes.
func DeriveServerName(binaryPath string) string {
	name := filepath.Base(binaryPath)
	name = strings.TrimSuffix(name, ".exe")
	name = strings.TrimSuffix(name, "-mcp")
	return name
}

func parseProjectArgs(args []string) (directory string, serverArgs []string) {
	directory = "."
	for i, arg := range args {
		if arg == "--" {
			return directory, args[i+1:]
		}
		if i == 0 {
			directory = arg
		}
	}
	return directory, nil
}

func parseUserArgs(args []string) []string {
	for i, arg := range args {
		if arg == "--" {
			return args[i+1:]
		}
	}
	return nil
}

func hasRootArg(args []string) bool {
	for _, arg := range args {
		if arg == "--root" || arg == "-root" || strings.HasPrefix(arg, "--root=") || strings.HasPrefix(arg, "-root=") {
			return true
		}
	}
	return false
}

func detectBinaryPath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("getting executable path: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("resolving symlinks for %s: %w", exe, err)
	}
	return resolved, nil
}

func resolveConfigPath(scope string, directory string) (string, error) {
	if scope == ScopeProject {
		absDir, err := filepath.Abs(directory)
		if err != nil {
			return "", fmt.Errorf("resolving directory %s: %w", directory, err)
		}
		return filepath.Join(absDir, ".mcp.json"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(homeDir, ".claude.json"), nil
}

func buildEntry(binaryPath string, serverArgs []string) mcpServerEntry {
	if runtime.GOOS == "windows" {
		args := append([]string{"/C", binaryPath}, serverArgs...)
		return mcpServerEntry{Command: "cmd", Args: args}
	}
	return mcpServerEntry{Command: binaryPath, Args: serverArgs}
}

// writeConfig merges the entry into the mcpServers object of configPath,
// keeping every other key, and replaces the file atomically.
func writeConfig(configPath string, serverName string, entry mcpServerEntry) error {
	config := map[string]any{
		"mcpServers": map[string]any{},
	}

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &config); err != nil {
			return fmt.Errorf("parsing existing config %s: %w", configPath, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("reading config %s: %w", configPath, err)
	}

	servers, ok := config["mcpServers"]
	if !ok || servers == nil {
		servers = map[string]any{}
		config["mcpServers"] = servers
	}
	serversMap, ok := servers.(map[string]any)
	if !ok {
		return fmt.Errorf("mcpServers in %s is not an object", configPath)
	}
	serversMap[serverName] = entry

	output, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	output = append(output, '\n')

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", configDir, err)
	}
	tmpFile, err := os.CreateTemp(configDir, ".mcp-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", configDir, err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(output); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp file %s: %w", tmpPath, err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, configPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming %s to %s: %w", tmpPath, configPath, err)
	}
	return nil
}
