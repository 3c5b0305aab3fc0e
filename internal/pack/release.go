package pack

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	git "github.com/go-git/go-git/v5"

	"github.com/timberavionics/kneeboardctl/internal/version"
)

// releaseFileName is the build-metadata file stamped into every archive root.
const releaseFileName = "RELEASE"

// writeReleaseFile stamps version and build metadata into the staged tree.
func writeReleaseFile(stageDir, releaseVersion, sourceDir string) error {
	content := fmt.Sprintf("version: %s\nbuilt: %s\ncommit: %s\n",
		releaseVersion,
		time.Now().UTC().Format(time.RFC3339),
		sourceCommit(sourceDir))
	return os.WriteFile(filepath.Join(stageDir, releaseFileName), []byte(content), 0o644)
}

// sourceCommit resolves the source tree's HEAD commit. Best effort: outside
// a repository it falls back to the build-time commit, then "unknown".
func sourceCommit(sourceDir string) string {
	repo, err := git.PlainOpenWithOptions(sourceDir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return version.GitCommit
	}
	head, err := repo.Head()
	if err != nil {
		return version.GitCommit
	}
	return head.Hash().String()[:12]
}
