// Package scaffold generates starter projects for svelgo new.
package scaffold

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/svelgo/svelgo/cmd/svelgo/internal/config"
)

// ProjectConfig holds everything needed to generate a starter project.
type ProjectConfig struct {
	Name      string
	Directory string
	Format    string // esm or cjs
	Port      int
	GitInit   bool
}

// Create generates the project skeleton: svelgo.yaml, a starter component,
// an index page and an entry script.
func Create(cfg *ProjectConfig) error {
	if cfg.Directory == "" {
		cfg.Directory = cfg.Name
	}
	if cfg.Format == "" {
		cfg.Format = "esm"
	}
	if cfg.Port == 0 {
		cfg.Port = 3000
	}

	if _, err := os.Stat(cfg.Directory); err == nil {
		return fmt.Errorf("directory %s already exists", cfg.Directory)
	}
	for _, dir := range []string{"src", "public"} {
		if err := os.MkdirAll(filepath.Join(cfg.Directory, dir), 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	projectConfig := config.DefaultConfig()
	projectConfig.Format = cfg.Format
	projectConfig.Dev.Port = cfg.Port
	if err := config.Save(projectConfig, cfg.Directory); err != nil {
		return fmt.Errorf("failed to write svelgo.yaml: %w", err)
	}

	files := map[string]string{
		"src/App.svelte":    appComponent(cfg),
		"src/main.js":       mainScript(cfg),
		"public/index.html": indexHTML(cfg),
		"README.md":         readme(cfg),
		".gitignore":        gitignore,
	}
	for name, content := range files {
		if err := writeFile(filepath.Join(cfg.Directory, name), content); err != nil {
			return err
		}
	}

	if cfg.GitInit {
		if err := initGitRepo(cfg.Directory); err != nil {
			// A failed git init should not fail project creation.
			fmt.Fprintf(os.Stderr, "Warning: failed to initialize git repository: %v\n", err)
		}
	}
	return nil
}

// initGitRepo initializes a git repository with an initial commit.
func initGitRepo(projectPath string) error {
	cmd := exec.Command("git", "init")
	cmd.Dir = projectPath
	if err := cmd.Run(); err != nil {
		return err
	}

	cmd = exec.Command("git", "add", ".")
	cmd.Dir = projectPath
	if err := cmd.Run(); err != nil {
		return err
	}

	cmd = exec.Command("git", "commit", "-m", "Initial commit")
	cmd.Dir = projectPath
	return cmd.Run()
}

func writeFile(path string, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func appComponent(cfg *ProjectConfig) string {
	return `<script>
	export let name = "` + cfg.Name + `";

	let count = 0;

	$: doubled = count * 2;

	function increment() {
		count += 1;
	}
</script>

<main>
	<h1>Hello {name}!</h1>
	<button on:click={increment}>
		Clicked {count} {count === 1 ? "time" : "times"}
	</button>
	{#if count > 0}
		<p>{count} doubled is {doubled}</p>
	{/if}
</main>

<style>
	main {
		text-align: center;
		padding: 1em;
	}
</style>
`
}

func mainScript(cfg *ProjectConfig) string {
	if cfg.Format == "cjs" {
		return `const App = require("./App.js");

const app = App.render([]);
document.getElementById("app").innerHTML = app;
`
	}
	return `import App from "./App.js";

const app = App.render([]);
document.getElementById("app").innerHTML = app;
`
}

func indexHTML(cfg *ProjectConfig) string {
	return `<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="utf-8" />
	<meta name="viewport" content="width=device-width, initial-scale=1" />
	<title>` + cfg.Name + `</title>
	<script type="module" src="/main.js" defer></script>
</head>
<body>
	<div id="app"></div>
</body>
</html>
`
}

func readme(cfg *ProjectConfig) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", cfg.Name)
	b.WriteString("A svelgo project.\n\n")
	b.WriteString("## Development\n\n")
	b.WriteString("```\nsvelgo dev\n```\n\n")
	b.WriteString("## Production build\n\n")
	b.WriteString("```\nsvelgo build\n```\n")
	return b.String()
}

const gitignore = `dist/
node_modules/
.DS_Store
`
