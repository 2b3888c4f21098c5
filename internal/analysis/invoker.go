package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/handvault/backend/internal/models"
)

// Result is everything the analyzer derives from one video.
type Result struct {
	TextHistory string
	GuiData     *models.GuiData
}

// Invoker converts an uploaded video into a text hand history plus the
// structured replay model. Implementations never touch the store; the
// caller owns all persistence of results.
type Invoker interface {
	Analyze(ctx context.Context, videoPath string) (*Result, error)
}

// scriptOutput is the analyzer's stdout protocol.
type scriptOutput struct {
	RawText    string          `json:"raw_text"`
	ParsedData *models.GuiData `json:"parsed_data"`
}

// ScriptInvoker runs the analyzer as a subprocess, appending the video path
// to the configured command line and decoding the JSON it prints to stdout.
type ScriptInvoker struct {
	command []string
	log     *logrus.Logger
}

func NewScriptInvoker(command string, log *logrus.Logger) (*ScriptInvoker, error) {
	parts := strings.Fields(command)
	if len(parts) == 0 {
		return nil, fmt.Errorf("analyzer command is empty")
	}
	return &ScriptInvoker{command: parts, log: log}, nil
}

func (i *ScriptInvoker) Analyze(ctx context.Context, videoPath string) (*Result, error) {
	args := append(append([]string{}, i.command[1:]...), videoPath)
	cmd := exec.CommandContext(ctx, i.command[0], args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	i.log.WithFields(logrus.Fields{
		"command": strings.Join(i.command, " "),
		"video":   videoPath,
	}).Info("Running analyzer")

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("analyzer timed out: %w", ctx.Err())
		}
		return nil, fmt.Errorf("analyzer exited with error: %w: %s", err, trim(stderr.String()))
	}

	var out scriptOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		return nil, fmt.Errorf("failed to decode analyzer output: %w", err)
	}

	return &Result{TextHistory: out.RawText, GuiData: out.ParsedData}, nil
}

// trim bounds diagnostic output so a chatty analyzer cannot flood logs or
// error responses.
func trim(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 1024 {
		return s[:1024] + "..."
	}
	return s
}
