package runner

import (
	"context"
	"fmt"
	"time"
)

// Filesystem mutations are routed through the same command policy as
// everything else (tee, chmod, mv and friends) so sudo rules and dry-run
// handling stay uniform. Under dry-run each helper records a single intent
// instead of its individual commands.

// WriteFile writes content to an absolute path with the given octal mode,
// atomically: tee to a temp path, chmod, mv into place.
func (r *Runner) WriteFile(ctx context.Context, path, content, mode string) error {
	if r.Note(fmt.Sprintf("write %s (%d bytes, mode %s)", path, len(content), mode)) {
		return nil
	}

	tmpPath := path + ".tmp"
	if _, err := r.Run(ctx, Command{Name: "tee", Args: []string{tmpPath}, Stdin: content, Privileged: true}); err != nil {
		r.discard(ctx, tmpPath)
		return fmt.Errorf("failed to write %s: %w", tmpPath, err)
	}
	if _, err := r.Run(ctx, Command{Name: "chmod", Args: []string{mode, tmpPath}, Privileged: true}); err != nil {
		r.discard(ctx, tmpPath)
		return fmt.Errorf("failed to chmod %s: %w", tmpPath, err)
	}
	if _, err := r.Run(ctx, Command{Name: "mv", Args: []string{"-f", tmpPath, path}, Privileged: true}); err != nil {
		r.discard(ctx, tmpPath)
		return fmt.Errorf("failed to move %s into place: %w", path, err)
	}
	return nil
}

// discard removes a stale temp path after a failed write, keeping the
// original failure as the reported error.
func (r *Runner) discard(ctx context.Context, path string) {
	_, _ = r.Run(ctx, Command{Name: "rm", Args: []string{"-f", path}, Privileged: true})
}

// MkdirAll creates a directory chain; the final directory gets the given
// octal mode.
func (r *Runner) MkdirAll(ctx context.Context, path, mode string) error {
	if r.Note(fmt.Sprintf("create directory %s (mode %s)", path, mode)) {
		return nil
	}
	if _, err := r.Run(ctx, Command{Name: "mkdir", Args: []string{"-p", "-m", mode, path}, Privileged: true}); err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	return nil
}

// Remove deletes a path. rm -f keeps removal idempotent: an absent file is
// not an error.
func (r *Runner) Remove(ctx context.Context, path string) error {
	if r.Note(fmt.Sprintf("remove %s", path)) {
		return nil
	}
	if _, err := r.Run(ctx, Command{Name: "rm", Args: []string{"-f", path}, Privileged: true}); err != nil {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}

// InstallFile copies src to dst with the given octal mode in one step.
func (r *Runner) InstallFile(ctx context.Context, src, dst, mode string) error {
	if r.Note(fmt.Sprintf("install %s to %s (mode %s)", src, dst, mode)) {
		return nil
	}
	if _, err := r.Run(ctx, Command{Name: "install", Args: []string{"-m", mode, src, dst}, Privileged: true}); err != nil {
		return fmt.Errorf("failed to install %s: %w", dst, err)
	}
	return nil
}

// Backup moves an existing file aside under a timestamp suffix and returns
// the backup path. Callers decide beforehand whether path needs backing up.
func (r *Runner) Backup(ctx context.Context, path string) (string, error) {
	backup := fmt.Sprintf("%s.%s.bak", path, time.Now().Format("20060102-150405"))
	if r.Note(fmt.Sprintf("back up %s to %s", path, backup)) {
		return backup, nil
	}
	if _, err := r.Run(ctx, Command{Name: "mv", Args: []string{"-f", path, backup}, Privileged: true}); err != nil {
		return "", fmt.Errorf("failed to back up %s: %w", path, err)
	}
	return backup, nil
}
