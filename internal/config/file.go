package config

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/bibsync/pkg/constants"
	"github.com/agentstation/bibsync/pkg/errors"
)

// Init writes the default configuration to path. An existing file is
// only replaced when force is set.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return errors.NewValidationError("path", path, "config file already exists, use --force to overwrite")
	}
	if err := os.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
		return errors.WrapIO("create", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, defaultYAML, constants.SecretFilePermissions); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

// Write renders c as YAML. The token is never included.
func (c *Config) Write(w io.Writer) error {
	data, err := yaml.MarshalWithOptions(c,
		yaml.Indent(2),
		yaml.IndentSequence(false),
	)
	if err != nil {
		return errors.WrapParse("yaml", c.File, err)
	}
	_, err = w.Write(data)
	return err
}

// Editor returns the command used to edit config files: $VISUAL, then
// $EDITOR, then vi.
func Editor() []string {
	for _, env := range []string{"VISUAL", "EDITOR"} {
		if fields := strings.Fields(os.Getenv(env)); len(fields) > 0 {
			return fields
		}
	}
	return []string{"vi"}
}

// Edit opens path in the user's editor and waits for it to exit.
func Edit(ctx context.Context, path string, stdin io.Reader, stdout, stderr io.Writer) error {
	editor := Editor()
	cmd := exec.CommandContext(ctx, editor[0], append(editor[1:], path)...)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = stdin, stdout, stderr
	if err := cmd.Run(); err != nil {
		return errors.WrapResource("run", "editor", editor[0], err)
	}
	return nil
}
