// Package bootstrap prepares the working directory before the server starts.
package bootstrap

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// DefaultTeam is written when no team file exists yet.
const DefaultTeam = "pikachu\ncharizard\nblastoise\nvenusaur\nmewtwo\ndragonite\n"

// Ensure creates teamDir and spritesDir if needed and writes DefaultTeam to
// teamDir/teamFile unless that file already exists. It reports whether the
// team file was created.
func Ensure(teamDir, teamFile, spritesDir string) (bool, error) {
	for _, dir := range []string{teamDir, spritesDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return false, fmt.Errorf("create %s: %w", dir, err)
		}
	}

	path := filepath.Join(teamDir, teamFile)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(DefaultTeam); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	return true, nil
}
