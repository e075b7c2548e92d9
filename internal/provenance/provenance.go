// Package provenance gathers best-effort traceability facts for a training
// run: the dataset content hash and the source-control revision.
package provenance

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// RevisionSource reports the current source-control revision.
type RevisionSource interface {
	Revision(ctx context.Context) (string, error)
}

// Git resolves the revision via `git rev-parse HEAD`.
type Git struct {
	// Dir is the working directory for the git invocation; empty means the
	// process working directory.
	Dir string
}

// Revision returns the current commit SHA.
func (g Git) Revision(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, "git", "rev-parse", "HEAD")
	cmd.Dir = g.Dir
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// dvcPointer is the subset of the .dvc pointer document we read.
type dvcPointer struct {
	Outs []struct {
		MD5 string `yaml:"md5"`
	} `yaml:"outs"`
}

// Fingerprint parses the dataset's .dvc pointer file and returns outs[0].md5.
// It returns "" if the pointer is absent or malformed in any way; absence of
// provenance is not a training failure.
func Fingerprint(root, datasetFile string) string {
	path := filepath.Join(root, "data", datasetFile+".dvc")

	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}

	var doc dvcPointer
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return ""
	}
	if len(doc.Outs) == 0 {
		return ""
	}
	return doc.Outs[0].MD5
}

// Facts holds the collected provenance. Either field may be empty.
type Facts struct {
	DatasetFingerprint string
	SourceRevision     string
}

// Collect gathers the dataset fingerprint and source revision concurrently.
// Both are best-effort: failures collapse to empty strings and Collect never
// returns an error.
func Collect(ctx context.Context, root, datasetFile string, rev RevisionSource) Facts {
	var facts Facts

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		facts.DatasetFingerprint = Fingerprint(root, datasetFile)
		return nil
	})
	g.Go(func() error {
		if rev == nil {
			return nil
		}
		if sha, err := rev.Revision(ctx); err == nil {
			facts.SourceRevision = sha
		}
		return nil
	})
	_ = g.Wait()

	return facts
}
