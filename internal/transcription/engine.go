package transcription

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os/exec"
	"strings"
)

// Engine turns a locally readable video file into transcript text.
type Engine interface {
	Transcribe(ctx context.Context, videoPath string) (text string, err error)
}

// CommandEngine invokes an external transcription program as a subprocess.
// The program receives the video path as its last argument, writes the
// transcript to stdout and diagnostics to stderr, and signals success with
// exit code 0.
//
// There is deliberately no timeout here: transcription time scales with
// video length and the caller's ctx is the only cancellation handle.
type CommandEngine struct {
	Command string
	Args    []string
}

func NewCommandEngine(command string, args []string) *CommandEngine {
	return &CommandEngine{Command: command, Args: args}
}

func (e *CommandEngine) Transcribe(ctx context.Context, videoPath string) (string, error) {
	args := append(append([]string{}, e.Args...), videoPath)
	cmd := exec.CommandContext(ctx, e.Command, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Printf("[Transcriber] running %s %s", e.Command, strings.Join(args, " "))
	if err := cmd.Run(); err != nil {
		diag := strings.TrimSpace(stderr.String())
		return "", fmt.Errorf("transcriber failed: %w: %s", err, diag)
	}

	text := strings.TrimSpace(stdout.String())
	if text == "" {
		// Exit 0 with no output: silent video or a misbehaving engine.
		log.Printf("[Transcriber] warning: empty transcript for %s", videoPath)
	}
	return text, nil
}
